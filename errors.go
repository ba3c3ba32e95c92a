package uniflow

import "errors"

// Sentinel errors for common failure cases.
var (
	// Construction-time errors. Any of these abort dispatcher
	// construction entirely; no partial dispatcher is usable.
	ErrActionAlreadyExists = errors.New("action already registered")
	ErrStoreAlreadyExists  = errors.New("store already registered")
	ErrNilBuilder          = errors.New("builder function must not be nil")

	// Handler registration errors, typically raised during store
	// construction.
	ErrUnknownActionID  = errors.New("unknown action id")
	ErrNilHandler       = errors.New("handler must not be nil")
	ErrDuplicateHandler = errors.New("handler already registered for action id")

	// Dispatch-time errors. These abort only the in-flight dispatch;
	// the dispatcher remains functional.
	ErrReentrantDispatch = errors.New("dispatch called while already dispatching")

	// Facade errors.
	ErrUnknownMethod    = errors.New("method not exposed on facade")
	ErrInvalidArguments = errors.New("arguments do not match method signature")
)
