// Package circuits is a small event-dispatch core: components form a tree,
// fire events onto named channels, and a root manager dispatches each event
// to the handlers whose channel and event kind match.
package circuits
