package interpreter

import (
	"fmt"
	"io"
)

// FrameInfo captures a stack frame at the time of an error.
type FrameInfo struct {
	Description string
	Path        string
	Line        int
	Column      int
	Offset      uint32
	TokenIdx    uint32
}

// Location renders the frame position as "path(line, col)".
func (fi FrameInfo) Location() string {
	if fi.Path == "" && fi.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s(%d, %d)", fi.Path, fi.Line, fi.Column)
}

func (f *StackFrame) frameInfo() FrameInfo {
	info := FrameInfo{
		Description: f.Description(),
		TokenIdx:    f.TokenIdx,
	}
	if f.Tkr == nil || !f.Tkr.IsTokenIndex(f.TokenIdx) {
		return info
	}
	tok := f.Tkr.ExpandToken(f.TokenIdx)
	info.Offset = tok.Offset
	info.Path, info.Line, info.Column = f.Tkr.Location(tok.Offset)
	return info
}

// StackTrace returns the current frame followed by its callers.
func (in *Interpreter) StackTrace() []FrameInfo {
	var trace []FrameInfo
	for fr := in.CurrentFrame; fr != nil; fr = fr.PrevFrame {
		trace = append(trace, fr.frameInfo())
	}
	return trace
}

// LogErrorWithStack writes message located at the current frame, then one
// "called from" line per caller.
func LogErrorWithStack(w io.Writer, in *Interpreter, message string) error {
	trace := in.StackTrace()
	if len(trace) == 0 {
		_, err := fmt.Fprintf(w, "error: %s\n", message)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s error: %s\n", trace[0].Location(), message); err != nil {
		return err
	}
	for _, fi := range trace[1:] {
		if _, err := fmt.Fprintf(w, "%s: called from %s\n", fi.Location(), fi.Description); err != nil {
			return err
		}
	}
	return nil
}
