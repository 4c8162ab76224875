// Package diag formats diagnostics: parse errors (scanner and parser,
// spec.md §4.4/§4.5) as SourceErrors rendered with a file:line:col
// header, quoted source line, and caret, and runtime-error backtraces
// (spec.md §7) as one "func [file:line]" line per frame.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/scriptcore/internal/lexer"

	"github.com/dustin/go-humanize"
)

// Code enumerates the fixed diagnostic codes spec.md §4.4/§4.5/§6 require
// a compile() error to carry.
type Code int

const (
	CodeUnknown Code = iota
	CodeInvalidUTF8
	CodeIllegalCharacter
	CodeUnterminatedString
	CodeUnterminatedComment
	CodeInvalidEscape
	CodeInvalidNumericLiteral
	CodeIntegerLiteralOverflow
	CodeRealLiteralOutOfRange
	CodeExpectedToken
	CodeExpectedClosingBrace
	CodeExpectedCatch
	CodeDuplicateObjectKey
	CodeReservedName
	CodeUnexpectedToken
	CodeUnexpectedEOF
)

func (c Code) String() string {
	switch c {
	case CodeInvalidUTF8:
		return "invalid-utf8"
	case CodeIllegalCharacter:
		return "illegal-character"
	case CodeUnterminatedString:
		return "unterminated-string"
	case CodeUnterminatedComment:
		return "unterminated-comment"
	case CodeInvalidEscape:
		return "invalid-escape"
	case CodeInvalidNumericLiteral:
		return "invalid-numeric-literal"
	case CodeIntegerLiteralOverflow:
		return "integer-literal-overflow"
	case CodeRealLiteralOutOfRange:
		return "real-literal-out-of-range"
	case CodeExpectedToken:
		return "expected-token"
	case CodeExpectedClosingBrace:
		return "expected-closing-brace"
	case CodeExpectedCatch:
		return "expected-catch"
	case CodeDuplicateObjectKey:
		return "duplicate-object-key"
	case CodeReservedName:
		return "reserved-name"
	case CodeUnexpectedToken:
		return "unexpected-token"
	case CodeUnexpectedEOF:
		return "unexpected-eof"
	default:
		return "unknown"
	}
}

// SourceError is a single diagnostic with position and (for parse errors) an
// enumerated Code, matching spec.md §6's ParseError = {line, offset,
// length, code, description}.
type SourceError struct {
	Code        Code
	Description string
	Source      string
	File        string
	Pos         lexer.Position
	Length      int
}

// New constructs a SourceError positioned at pos with a one-byte span.
func New(code Code, description string, pos lexer.Position, source, file string) *SourceError {
	return &SourceError{Code: code, Description: description, Pos: pos, Source: source, File: file, Length: 1}
}

func (e *SourceError) Error() string { return e.Format(false) }

// Format renders the file:line:col header, the offending source line, and
// a caret span under it, optionally with ANSI color.
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		span := e.Length
		if span < 1 {
			span = 1
		}
		sb.WriteString(strings.Repeat("^", span))
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Description)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *SourceError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of errors as a count header followed by each
// error in turn.
func FormatAll(errs []*SourceError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %s error(s):\n\n", humanize.Comma(int64(len(errs))))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Frame is one backtrace entry accumulated as a runtime exception unwinds
// (spec.md §4.9/§7): the source location and enclosing function name.
type Frame struct {
	File string
	Line int
	Func string
}

// Backtrace is an ordered list of Frames, oldest call first — appended to
// as each function frame unwinds (spec.md §4.9), and exposed to user catch
// blocks in reverse (most recent call first).
type Backtrace []Frame

func (bt Backtrace) String() string {
	if len(bt) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(bt) - 1; i >= 0; i-- {
		f := bt[i]
		fmt.Fprintf(&sb, "%s [%s:%d]", f.Func, f.File, f.Line)
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// OverflowMessage renders a human-readable integer overflow diagnostic,
// using go-humanize so large operands print with thousands separators
// rather than a bare digit run. The interpreter's own overflow errors do
// not use it; they format operands with %d.
func OverflowMessage(op string, a, b int64) string {
	return fmt.Sprintf("integer overflow: %s %s %s overflows a 64-bit signed integer",
		humanize.Comma(a), op, humanize.Comma(b))
}

// CollectorSummary renders a one-line collector result, pluralizing
// "cycle" the way go-humanize's English helpers do elsewhere in the pack.
func CollectorSummary(reclaimed int) string {
	if reclaimed == 1 {
		return "reclaimed 1 cycle"
	}
	return fmt.Sprintf("reclaimed %s cycles", humanize.Comma(int64(reclaimed)))
}
