package circuits

import "errors"

// Registration errors. These are the only fatal errors the core returns;
// everything handler-side is recovered and reported through Error events.
var (
	// ErrAlreadyRegistered is returned by Register when the component already
	// has a parent.
	ErrAlreadyRegistered = errors.New("circuits: component already registered")

	// ErrCycle is returned by Register when parent is a descendant of the
	// component being registered.
	ErrCycle = errors.New("circuits: register would create a cycle")

	// ErrNilParent is returned by Register and Attach when parent is nil.
	ErrNilParent = errors.New("circuits: parent is nil")
)
