package circuits

// AnyChannel is the reserved wildcard channel. Used as an event's target it
// reaches every handler in the tree whose kind matches, regardless of the
// channel that handler is registered on. Used as a handler's channel it
// matches an event fired on any target channel.
const AnyChannel = "*"
