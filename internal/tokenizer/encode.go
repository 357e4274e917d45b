package tokenizer

import (
	"fmt"

	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/token"
)

// A token record is:
//
//	varint(offset - checkpoint) byte(type) [varint(label)] [varint(length)]
//
// The label is present for Identifier and StringLiteral. The length is
// present for kinds whose spelling is not implied by the type.

func hasLength(typ token.Type) bool {
	switch typ {
	case token.NumericLiteral, token.BeginMultilineString, token.EndString:
		return true
	}
	return false
}

// encode appends tok to the stream and returns its index.
func (t *Tokenizer) encode(tok token.Token) uint32 {
	idx := uint32(len(t.data))
	block := int(idx >> t.shift)
	for len(t.checkpoints) <= block {
		t.checkpoints = append(t.checkpoints, tok.Offset)
	}
	for len(t.starts) <= int(idx/64) {
		t.starts = append(t.starts, 0)
	}
	t.starts[idx/64] |= 1 << (idx % 64)
	t.data = label.AppendVarint(t.data, tok.Offset-t.checkpoints[block])
	t.data = append(t.data, byte(tok.Type))
	if tok.Type.HasLabel() {
		t.data = label.AppendVarint(t.data, uint32(tok.Label))
	}
	if hasLength(tok.Type) {
		t.data = label.AppendVarint(t.data, uint32(len(tok.Text)))
	}
	return idx
}

// decode expands the record at idx and returns the index of the next record.
func (t *Tokenizer) decode(idx uint32) (token.Token, uint32) {
	pos := idx
	delta, n, err := label.DecodeVarint(t.data[pos:])
	if err != nil || int(pos)+n >= len(t.data) {
		panic(fmt.Sprintf("tokenizer: corrupt token record at %d", idx))
	}
	pos += uint32(n)
	tok := token.Token{
		Index:  idx,
		Offset: t.checkpoints[idx>>t.shift] + delta,
		Type:   token.Type(t.data[pos]),
	}
	pos++

	if tok.Type.HasLabel() {
		v, n := t.mustVarint(idx, pos)
		pos += n
		tok.Label = label.Label(v)
		tok.Text = t.labels.View(tok.Label)
	}
	switch {
	case hasLength(tok.Type):
		length, n := t.mustVarint(idx, pos)
		pos += n
		tok.Text = t.sourceText(tok.Offset, length)
	case tok.Type == token.Invalid:
		tok.Text = t.sourceText(tok.Offset, 1)
	case !tok.Type.HasLabel():
		tok.Text, _ = tok.Type.FixedText()
	}
	return tok, pos
}

func (t *Tokenizer) mustVarint(idx, pos uint32) (uint32, uint32) {
	v, n, err := label.DecodeVarint(t.data[pos:])
	if err != nil {
		panic(fmt.Sprintf("tokenizer: corrupt token record at %d", idx))
	}
	return v, uint32(n)
}
