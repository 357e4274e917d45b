package tokenizer

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/token"
)

// DefaultCheckpointInterval is the number of encoded bytes covered by one
// checkpoint table entry.
const DefaultCheckpointInterval = 256

// Options configures a Tokenizer at construction time.
type Options struct {
	TokenizeNewLine    bool
	CheckpointInterval int // power of two; 0 selects DefaultCheckpointInterval
}

// DefaultOptions mirrors the behavior a fresh tokenizer starts with.
func DefaultOptions() Options {
	return Options{
		TokenizeNewLine:    true,
		CheckpointInterval: DefaultCheckpointInterval,
	}
}

// Behavior is the scanner state a parser may flip between reads.
type Behavior struct {
	TokenizeNewLine   bool
	InsideString      bool
	IsMultilineString bool
}

type segment struct {
	path  string
	text  string
	base  uint32
	lines *FileLocationMap
}

// Tokenizer scans source text into a compact, randomly addressable token
// stream. Every token handed out by ReadToken stays addressable through
// ExpandToken for the lifetime of the Tokenizer.
type Tokenizer struct {
	Behavior Behavior

	labels      *label.Interner
	shift       uint
	data        []byte
	checkpoints []uint32
	starts      []uint64 // one bit per data byte, set where a record begins
	segments    []segment

	// scanner cursor within the active segment
	src  string
	base uint32
	pos  int

	nextIdx uint32
}

// New creates a tokenizer that interns identifiers and string literals into labels.
func New(labels *label.Interner, opts Options) (*Tokenizer, error) {
	if labels == nil {
		return nil, fmt.Errorf("tokenizer: nil label interner")
	}
	interval := opts.CheckpointInterval
	if interval == 0 {
		interval = DefaultCheckpointInterval
	}
	if interval < 0 || interval&(interval-1) != 0 {
		return nil, fmt.Errorf("tokenizer: checkpoint interval %d is not a power of two", interval)
	}
	return &Tokenizer{
		Behavior: Behavior{TokenizeNewLine: opts.TokenizeNewLine},
		labels:   labels,
		shift:    uint(bits.TrailingZeros(uint(interval))),
	}, nil
}

// Labels returns the interner the tokenizer writes into.
func (t *Tokenizer) Labels() *label.Interner {
	return t.labels
}

// SetSourceInput starts scanning a new source segment. Tokens from earlier
// segments remain addressable, and offsets continue where the previous
// segment ended.
func (t *Tokenizer) SetSourceInput(path, text string) {
	base := t.totalLen()
	t.segments = append(t.segments, segment{path: path, text: text, base: base})
	t.src = text
	t.base = base
	t.pos = 0
	t.nextIdx = uint32(len(t.data))
}

// Len returns the size of the encoded stream, which is also the index the
// EndOfFile token reports.
func (t *Tokenizer) Len() uint32 {
	return uint32(len(t.data))
}

// NextTokenIdx returns the index of the token the next ReadToken call yields.
func (t *Tokenizer) NextTokenIdx() uint32 {
	return t.nextIdx
}

// IsTokenIndex reports whether idx is the index of a token: the start of an
// encoded record, or Len() for EndOfFile.
func (t *Tokenizer) IsTokenIndex(idx uint32) bool {
	if idx == uint32(len(t.data)) {
		return true
	}
	if idx > uint32(len(t.data)) || int(idx/64) >= len(t.starts) {
		return false
	}
	return t.starts[idx/64]&(1<<(idx%64)) != 0
}

// RewindTo makes ReadToken replay the encoded stream starting at idx.
func (t *Tokenizer) RewindTo(idx uint32) {
	if !t.IsTokenIndex(idx) {
		panic(fmt.Sprintf("tokenizer: rewind index %d is not a token index", idx))
	}
	t.nextIdx = idx
}

// ReadToken returns the next token. Tokens already encoded (after a
// RewindTo) are decoded first; otherwise raw input is scanned and the new
// token is appended to the stream. A lexical error encodes nothing.
func (t *Tokenizer) ReadToken() (token.Token, error) {
	for t.nextIdx < uint32(len(t.data)) {
		tok, next := t.decode(t.nextIdx)
		t.nextIdx = next
		if tok.Type == token.NewLine && !t.Behavior.TokenizeNewLine {
			continue
		}
		return tok, nil
	}

	tok, err := t.scan()
	if err != nil {
		return token.Token{}, err
	}
	if tok.Type == token.EndOfFile {
		tok.Index = uint32(len(t.data))
		return tok, nil
	}
	tok.Index = t.encode(tok)
	t.nextIdx = uint32(len(t.data))
	return tok, nil
}

// ExpandToken decodes the token whose record starts at idx. idx == Len()
// yields the EndOfFile token. Any other idx must satisfy IsTokenIndex.
func (t *Tokenizer) ExpandToken(idx uint32) token.Token {
	if idx == uint32(len(t.data)) {
		return token.Token{Index: idx, Offset: t.totalLen(), Type: token.EndOfFile}
	}
	if !t.IsTokenIndex(idx) {
		panic(fmt.Sprintf("tokenizer: index %d is not a token index", idx))
	}
	tok, _ := t.decode(idx)
	return tok
}

// FormatFileLocation renders an absolute source offset as "path(line, col)".
func (t *Tokenizer) FormatFileLocation(offset uint32) string {
	seg := t.segmentFor(offset)
	if seg == nil {
		return fmt.Sprintf("<unknown>(offset %d)", offset)
	}
	line, col := seg.locations().LineColumn(offset - seg.base)
	return fmt.Sprintf("%s(%d, %d)", seg.path, line, col)
}

// Location resolves an absolute source offset into its path, line and column.
func (t *Tokenizer) Location(offset uint32) (path string, line, col int) {
	seg := t.segmentFor(offset)
	if seg == nil {
		return "", 0, 0
	}
	line, col = seg.locations().LineColumn(offset - seg.base)
	return seg.path, line, col
}

func (t *Tokenizer) totalLen() uint32 {
	if len(t.segments) == 0 {
		return 0
	}
	last := t.segments[len(t.segments)-1]
	return last.base + uint32(len(last.text))
}

func (t *Tokenizer) segmentFor(offset uint32) *segment {
	if len(t.segments) == 0 {
		return nil
	}
	i := sort.Search(len(t.segments), func(i int) bool {
		return t.segments[i].base > offset
	})
	if i == 0 {
		return nil
	}
	return &t.segments[i-1]
}

func (s *segment) locations() *FileLocationMap {
	if s.lines == nil {
		s.lines = NewFileLocationMap(s.text)
	}
	return s.lines
}

func (t *Tokenizer) sourceText(offset, length uint32) string {
	seg := t.segmentFor(offset)
	if seg == nil {
		return ""
	}
	start := offset - seg.base
	end := start + length
	if end > uint32(len(seg.text)) {
		end = uint32(len(seg.text))
	}
	return seg.text[start:end]
}

// scan reads one token from the raw input of the active segment.
func (t *Tokenizer) scan() (token.Token, error) {
	if t.Behavior.InsideString {
		return t.scanString()
	}
	for {
		t.skipWhitespace()
		if t.pos >= len(t.src) {
			return t.makeToken(token.EndOfFile, t.pos, ""), nil
		}
		ch := t.src[t.pos]
		if ch == '\n' {
			start := t.pos
			t.pos++
			if t.Behavior.TokenizeNewLine {
				return t.makeToken(token.NewLine, start, "\n"), nil
			}
			continue
		}
		if ch == '/' {
			switch t.peekChar() {
			case '/':
				t.skipLineComment()
				continue
			case '*':
				if err := t.skipBlockComment(); err != nil {
					return token.Token{}, err
				}
				continue
			}
		}
		break
	}

	start := t.pos
	ch := t.src[t.pos]
	switch ch {
	case '"':
		if strings.HasPrefix(t.src[t.pos:], `"""`) {
			t.pos += 3
			if t.pos < len(t.src) && t.src[t.pos] == '\n' {
				t.pos++
			}
			return t.makeToken(token.BeginMultilineString, start, t.src[start:t.pos]), nil
		}
		return t.single(token.BeginString), nil
	case '=':
		return t.pair('=', token.DoubleEqual, token.Equal), nil
	case '/':
		return t.pair('=', token.SlashEqual, token.Slash), nil
	case '<':
		return t.pair('=', token.LessThanOrEqual, token.LessThan), nil
	case '>':
		return t.pair('=', token.GreaterThanOrEqual, token.GreaterThan), nil
	case '|':
		return t.pair('|', token.DoubleVerticalBar, token.VerticalBar), nil
	case '&':
		return t.pair('&', token.DoubleAmpersand, token.Ampersand), nil
	case '{':
		return t.single(token.OpenCurly), nil
	case '}':
		return t.single(token.CloseCurly), nil
	case '(':
		return t.single(token.OpenParen), nil
	case ')':
		return t.single(token.CloseParen), nil
	case '[':
		return t.single(token.OpenSquare), nil
	case ']':
		return t.single(token.CloseSquare), nil
	case ':':
		return t.single(token.Colon), nil
	case ';':
		return t.single(token.Semicolon), nil
	case '.':
		return t.single(token.Dot), nil
	case ',':
		return t.single(token.Comma), nil
	case '+':
		return t.single(token.Plus), nil
	case '-':
		return t.single(token.Minus), nil
	case '*':
		return t.single(token.Asterisk), nil
	case '%':
		return t.single(token.Percent), nil
	case '!':
		return t.single(token.Bang), nil
	case '~':
		return t.single(token.Tilde), nil
	}

	if isIdentStart(ch) {
		for t.pos < len(t.src) && isIdentChar(t.src[t.pos]) {
			t.pos++
		}
		text := t.src[start:t.pos]
		tok := t.makeToken(token.Identifier, start, text)
		tok.Label = t.labels.Insert(text)
		return tok, nil
	}
	if isDigit(ch) {
		for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
			t.pos++
		}
		return t.makeToken(token.NumericLiteral, start, t.src[start:t.pos]), nil
	}
	return t.single(token.Invalid), nil
}

// scanString reads one token while Behavior.InsideString is set.
func (t *Tokenizer) scanString() (token.Token, error) {
	start := t.pos
	multiline := t.Behavior.IsMultilineString
	var sb strings.Builder

	literal := func() token.Token {
		text := sb.String()
		tok := t.makeToken(token.StringLiteral, start, text)
		tok.Label = t.labels.Insert(text)
		return tok
	}

	for {
		if t.pos >= len(t.src) {
			return token.Token{}, t.lexError(UnterminatedString, start)
		}
		ch := t.src[t.pos]
		switch ch {
		case '\\':
			if t.pos+1 >= len(t.src) {
				t.pos = len(t.src)
				return token.Token{}, t.lexError(UnterminatedString, start)
			}
			next := t.src[t.pos+1]
			if next == '\n' && !multiline {
				t.pos += 2
				return token.Token{}, t.lexError(BadEscape, start)
			}
			sb.WriteByte(next)
			t.pos += 2
			continue
		case '"':
			if multiline && !strings.HasPrefix(t.src[t.pos:], `"""`) {
				sb.WriteByte(ch)
				t.pos++
				continue
			}
			if sb.Len() > 0 {
				return literal(), nil
			}
			n := 1
			if multiline {
				n = 3
			}
			t.pos += n
			return t.makeToken(token.EndString, start, t.src[start:t.pos]), nil
		case '$':
			if t.peekChar() == '{' {
				if sb.Len() > 0 {
					return literal(), nil
				}
				t.pos += 2
				return t.makeToken(token.BeginStringEmbed, start, "${"), nil
			}
		case '\n':
			if !multiline {
				t.pos++
				return token.Token{}, t.lexError(NewlineInString, start)
			}
		}
		sb.WriteByte(ch)
		t.pos++
	}
}

func (t *Tokenizer) makeToken(typ token.Type, start int, text string) token.Token {
	return token.Token{
		Offset: t.base + uint32(start),
		Type:   typ,
		Text:   text,
	}
}

func (t *Tokenizer) single(typ token.Type) token.Token {
	start := t.pos
	t.pos++
	return t.makeToken(typ, start, t.src[start:t.pos])
}

// pair scans a one or two byte operator depending on the following byte.
func (t *Tokenizer) pair(second byte, double, one token.Type) token.Token {
	if t.peekChar() == second {
		start := t.pos
		t.pos += 2
		return t.makeToken(double, start, t.src[start:t.pos])
	}
	return t.single(one)
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case ' ', '\t', '\r':
			t.pos++
		default:
			return
		}
	}
}

func (t *Tokenizer) skipLineComment() {
	for t.pos < len(t.src) && t.src[t.pos] != '\n' {
		t.pos++
	}
}

func (t *Tokenizer) skipBlockComment() error {
	start := t.pos
	t.pos += 2 // consume "/*"
	if end := strings.Index(t.src[t.pos:], "*/"); end >= 0 {
		t.pos += end + 2
		return nil
	}
	t.pos = len(t.src)
	return t.lexError(UnterminatedComment, start)
}

func (t *Tokenizer) peekChar() byte {
	if t.pos+1 >= len(t.src) {
		return 0
	}
	return t.src[t.pos+1]
}

func (t *Tokenizer) lexError(kind ErrorKind, start int) *LexError {
	offset := t.base + uint32(start)
	return &LexError{
		Kind:     kind,
		Offset:   offset,
		Location: t.FormatFileLocation(offset),
	}
}

func isIdentStart(ch byte) bool {
	return ch >= 0x80 || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
