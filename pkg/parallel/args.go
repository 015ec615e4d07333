package parallel

import (
	"fmt"
)

// Args holds the extra arguments passed to every invocation of a target
// function. They are copied into each outer worker through the transfer codec,
// so values must be encodable by it (register custom types with gob.Register
// when using the gob codec).
type Args struct {
	Positional []any
	Named      map[string]any
}

// Arg adds extra arguments to an Executor.
type Arg func(*Args)

// Pos appends positional arguments.
func Pos(values ...any) Arg {
	return func(a *Args) {
		a.Positional = append(a.Positional, values...)
	}
}

// Kw sets a named argument.
func Kw(name string, value any) Arg {
	return func(a *Args) {
		if a.Named == nil {
			a.Named = make(map[string]any)
		}
		a.Named[name] = value
	}
}

func buildArgs(args []Arg) Args {
	var a Args
	for _, apply := range args {
		apply(&a)
	}
	return a
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// ArgAt returns positional argument i converted to T.
func ArgAt[T any](a Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a.Positional) {
		return zero, fmt.Errorf("positional argument %d out of range (have %d)", i, len(a.Positional))
	}
	v, ok := a.Positional[i].(T)
	if !ok {
		return zero, fmt.Errorf("positional argument %d is %T, not %T", i, a.Positional[i], zero)
	}
	return v, nil
}

// Lookup returns the named argument converted to T. The second result is
// false when the name is missing or holds another type.
func Lookup[T any](a Args, name string) (T, bool) {
	var zero T
	raw, ok := a.Named[name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
