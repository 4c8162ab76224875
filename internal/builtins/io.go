package builtins

import (
	"fmt"
	"io"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// registerIO registers print/println: space-joined arguments, strings
// printed unquoted, everything else rendered with Dump.
func registerIO(global *interp.Context, out io.Writer) {
	declare(global, "print", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		writeArgs(out, args, false)
		return ref.NewTemporary(value.NewNull()), nil
	})
	declare(global, "println", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		writeArgs(out, args, true)
		return ref.NewTemporary(value.NewNull()), nil
	})
}

func writeArgs(out io.Writer, args []*ref.Reference, newline bool) {
	if out == nil {
		return
	}
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(out, " ")
		}
		v, err := a.Read()
		if err != nil {
			continue
		}
		if v.Kind() == value.String {
			fmt.Fprint(out, v.Str())
		} else {
			fmt.Fprint(out, v.Dump())
		}
	}
	if newline {
		fmt.Fprintln(out)
	}
}
