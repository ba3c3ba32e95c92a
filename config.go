package uniflow

import (
	"github.com/go-logr/logr"
)

// Option is a function that configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogr sets the logger for the dispatcher. The default discards
// everything.
var WithLogr = func(log logr.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}
