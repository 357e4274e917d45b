package tokenizer

import "fmt"

// ErrorKind classifies a lexical error.
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota + 1
	UnterminatedComment
	NewlineInString
	BadEscape
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string literal"
	case UnterminatedComment:
		return "unterminated comment"
	case NewlineInString:
		return "unexpected end of line inside string literal"
	case BadEscape:
		return "backslash at end of line inside string literal"
	default:
		return fmt.Sprintf("lexical error %d", int(k))
	}
}

// LexError reports malformed input. Offset is where the offending token
// started; Location is the same offset rendered as "path(line, col)".
type LexError struct {
	Kind     ErrorKind
	Offset   uint32
	Location string
}

func (e *LexError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: %s", e.Location, e.Kind)
	}
	return e.Kind.String()
}
