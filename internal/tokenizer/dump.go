package tokenizer

import (
	"fmt"
	"io"

	"github.com/xirelogy/go-biscuit/internal/token"
)

// ScanAll reads tokens until EndOfFile, switching Behavior in and out of
// string mode the way a parser does: quotes enter string mode, "${" returns
// to code until the matching "}", and EndString leaves string mode. The
// EndOfFile token is included. On error the tokens read so far are returned.
func ScanAll(t *Tokenizer) ([]token.Token, error) {
	type level struct {
		behavior Behavior
		depth    int
		embed    bool
	}
	var (
		stack []level
		toks  []token.Token
		depth int
		embed bool
	)
	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.Behavior, depth, embed = top.behavior, top.depth, top.embed
	}

	for {
		tok, err := t.ReadToken()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		switch tok.Type {
		case token.EndOfFile:
			return toks, nil
		case token.BeginString, token.BeginMultilineString:
			stack = append(stack, level{t.Behavior, depth, embed})
			t.Behavior.InsideString = true
			t.Behavior.IsMultilineString = tok.Type == token.BeginMultilineString
		case token.BeginStringEmbed:
			stack = append(stack, level{t.Behavior, depth, embed})
			t.Behavior.InsideString = false
			depth, embed = 0, true
		case token.EndString:
			if len(stack) > 0 {
				pop()
			}
		case token.OpenCurly:
			depth++
		case token.CloseCurly:
			switch {
			case depth == 0 && embed && len(stack) > 0:
				pop()
			case depth > 0:
				depth--
			}
		}
	}
}

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
)

// Dumper formats expanded tokens as a readable listing.
type Dumper struct {
	w     io.Writer
	color bool
}

// NewDumper constructs a dumper that writes to w, optionally with ANSI colour.
func NewDumper(w io.Writer, color bool) *Dumper {
	return &Dumper{w: w, color: color}
}

// Dump writes one line per token: index, location, type and description.
func (d *Dumper) Dump(t *Tokenizer, toks []token.Token) error {
	if t == nil {
		return fmt.Errorf("nil tokenizer")
	}
	for _, tok := range toks {
		loc := t.FormatFileLocation(tok.Offset)
		typ := fmt.Sprintf("%-20s", tok.Type)
		desc := tok.Desc()
		if d.color {
			loc = ansiDim + loc + ansiReset
			typ = ansiCyan + typ + ansiReset
			if tok.Type.HasLabel() {
				desc = fmt.Sprintf("%s %s#%d%s", desc, ansiYellow, tok.Label, ansiReset)
			}
		} else if tok.Type.HasLabel() {
			desc = fmt.Sprintf("%s #%d", desc, tok.Label)
		}
		if _, err := fmt.Fprintf(d.w, "%06d  %s  %s %s\n", tok.Index, loc, typ, desc); err != nil {
			return err
		}
	}
	return nil
}
