package runtime

// Environment is a variable scope. One is created for the program root and
// one per function invocation; blocks share their enclosing environment.
// Closures hold the *Environment itself, so writes are visible both ways.
type Environment struct {
	vars   map[string]Value
	outer  *Environment
	this   Value
	strict bool
}

// NewEnvironment creates a scope whose parent is outer (nil for a root) with
// the given this binding. The strict-assignment setting is inherited.
func NewEnvironment(outer *Environment, this Value) *Environment {
	env := &Environment{
		vars:  make(map[string]Value),
		outer: outer,
		this:  this,
	}
	if outer != nil {
		env.strict = outer.strict
	}
	return env
}

// Declare creates or overwrites a binding in this scope.
func (e *Environment) Declare(name string, value Value) {
	e.vars[name] = value
}

// DeclareVar binds name to Undefined unless this scope already has it.
func (e *Environment) DeclareVar(name string) {
	if _, exists := e.vars[name]; exists {
		return
	}
	e.vars[name] = Undefined
}

// Get returns the nearest binding for name or a ReferenceError.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return Undefined, NewReferenceError("%s is not defined", name)
}

// Lookup is Get without the error.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Undefined, false
}

// Has reports whether name is bound anywhere on the chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// HasOwn reports whether name is bound in this scope itself.
func (e *Environment) HasOwn(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Set assigns to the nearest existing binding. When none exists the binding
// is created in the root environment, unless strict assignment is on, in
// which case it is a ReferenceError.
func (e *Environment) Set(name string, value Value) error {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return nil
		}
	}
	if e.strict {
		return NewReferenceError("%s is not defined", name)
	}
	e.Root().vars[name] = value
	return nil
}

// SetStrict toggles strict assignment for this environment and every scope
// created from it afterwards.
func (e *Environment) SetStrict(strict bool) {
	e.strict = strict
}

func (e *Environment) Strict() bool {
	return e.strict
}

// Root returns the outermost environment.
func (e *Environment) Root() *Environment {
	env := e
	for env.outer != nil {
		env = env.outer
	}
	return env
}

// Outer returns the parent environment.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// This returns the this binding of the invocation that created the scope.
func (e *Environment) This() Value {
	return e.this
}

// Names returns the names bound in this scope, in no particular order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}
