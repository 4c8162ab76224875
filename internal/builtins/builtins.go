// Package builtins is the "standard/builtin function library" spec.md §1
// calls out as an external collaborator, not part of the core: a minimal
// demonstration library a host installs into a GlobalContext before
// running a Program. One register function per concern, collected by a
// single Register entry point.
package builtins

import (
	"fmt"
	"io"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Register installs every builtin this package provides into global,
// writing Print/PrintLn output to out (nil disables output).
func Register(global *interp.Context, out io.Writer) {
	registerIO(global, out)
	registerConversion(global)
	registerString(global)
	registerMath(global)
	registerArray(global)
}

func declare(global *interp.Context, name string, fn interp.BuiltinFunc) {
	global.Declare(name, interp.NewBuiltin(name, fn).Value(), true)
}

// throwf builds a catchable Exception carrying a plain string message, the
// same shape the core's own throwStringf gives built-in runtime errors
// (spec.md §4.7); builtins live outside internal/interp so they construct
// the exported Exception fields directly rather than calling an
// unexported constructor.
func throwf(format string, args ...interface{}) *interp.Exception {
	return &interp.Exception{Thrown: value.NewString(fmt.Sprintf(format, args...))}
}
