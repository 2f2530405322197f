package builtins

import (
	"io"
	"os"
)

// Option configures RegisterAll.
type Option func(*realm)

// WithStdout sets where console.log writes. The default is os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *realm) {
		if w != nil {
			r.stdout = w
		}
	}
}

// RegisterAll installs the built-in bindings into the host's root
// environment.
func RegisterAll(host Host, opts ...Option) {
	r := &realm{
		host:   host,
		store:  host.Store(),
		coerce: host.Coercer(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	// 1. Object (foundational - other prototypes derive from it)
	r.declare("Object", r.createObjectConstructor())

	// 2. Function
	r.declare("Function", r.createFunctionConstructor())

	// 3. Conversion functions
	r.declare("Boolean", r.createBooleanFunction())
	r.declare("Number", r.createNumberFunction())
	r.declare("String", r.createStringFunction())

	// 4. Error types
	r.registerErrors()

	// 5. Console
	r.declare("console", r.createConsoleObject())

	// 6. Global values and functions
	r.registerGlobals()
}
