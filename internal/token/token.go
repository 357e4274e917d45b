package token

import (
	"fmt"

	"github.com/xirelogy/go-biscuit/internal/label"
)

// Type identifies the category of a token. It is stored as one byte in the
// encoded token stream.
type Type uint8

// Token is the expanded form of an encoded token.
type Token struct {
	Index  uint32 // byte offset of the token's record in the encoded stream
	Offset uint32 // absolute source offset across all input segments
	Type   Type
	Label  label.Label // set for Identifier and StringLiteral
	Text   string
}

const (
	Invalid Type = iota
	EndOfFile
	NewLine
	LineComment
	CStyleComment
	Identifier
	NumericLiteral
	BeginString
	BeginMultilineString
	StringLiteral
	BeginStringEmbed
	EndString

	// punctuators
	OpenCurly
	CloseCurly
	OpenParen
	CloseParen
	OpenSquare
	CloseSquare
	Colon
	Semicolon
	Dot
	Comma

	// operators
	Equal
	SlashEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	DoubleEqual
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Bang
	Tilde
	VerticalBar
	DoubleVerticalBar
	Ampersand
	DoubleAmpersand

	numTypes
)

// fixedText holds the spelling of every token whose text is implied by its type.
var fixedText = [numTypes]string{
	NewLine:            "\n",
	BeginString:        `"`,
	BeginStringEmbed:   "${",
	OpenCurly:          "{",
	CloseCurly:         "}",
	OpenParen:          "(",
	CloseParen:         ")",
	OpenSquare:         "[",
	CloseSquare:        "]",
	Colon:              ":",
	Semicolon:          ";",
	Dot:                ".",
	Comma:              ",",
	Equal:              "=",
	SlashEqual:         "/=",
	LessThan:           "<",
	LessThanOrEqual:    "<=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
	DoubleEqual:        "==",
	Plus:               "+",
	Minus:              "-",
	Asterisk:           "*",
	Slash:              "/",
	Percent:            "%",
	Bang:               "!",
	Tilde:              "~",
	VerticalBar:        "|",
	DoubleVerticalBar:  "||",
	Ampersand:          "&",
	DoubleAmpersand:    "&&",
}

var names = [numTypes]string{
	Invalid:              "Invalid",
	EndOfFile:            "EndOfFile",
	NewLine:              "NewLine",
	LineComment:          "LineComment",
	CStyleComment:        "CStyleComment",
	Identifier:           "Identifier",
	NumericLiteral:       "NumericLiteral",
	BeginString:          "BeginString",
	BeginMultilineString: "BeginMultilineString",
	StringLiteral:        "StringLiteral",
	BeginStringEmbed:     "BeginStringEmbed",
	EndString:            "EndString",
	OpenCurly:            "OpenCurly",
	CloseCurly:           "CloseCurly",
	OpenParen:            "OpenParen",
	CloseParen:           "CloseParen",
	OpenSquare:           "OpenSquare",
	CloseSquare:          "CloseSquare",
	Colon:                "Colon",
	Semicolon:            "Semicolon",
	Dot:                  "Dot",
	Comma:                "Comma",
	Equal:                "Equal",
	SlashEqual:           "SlashEqual",
	LessThan:             "LessThan",
	LessThanOrEqual:      "LessThanOrEqual",
	GreaterThan:          "GreaterThan",
	GreaterThanOrEqual:   "GreaterThanOrEqual",
	DoubleEqual:          "DoubleEqual",
	Plus:                 "Plus",
	Minus:                "Minus",
	Asterisk:             "Asterisk",
	Slash:                "Slash",
	Percent:              "Percent",
	Bang:                 "Bang",
	Tilde:                "Tilde",
	VerticalBar:          "VerticalBar",
	DoubleVerticalBar:    "DoubleVerticalBar",
	Ampersand:            "Ampersand",
	DoubleAmpersand:      "DoubleAmpersand",
}

func (t Type) String() string {
	if t < numTypes {
		return names[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports whether t is a known token type.
func (t Type) Valid() bool {
	return t < numTypes
}

// FixedText returns the spelling implied by t, if any.
func (t Type) FixedText() (string, bool) {
	if t >= numTypes || fixedText[t] == "" {
		return "", false
	}
	return fixedText[t], true
}

// HasLabel reports whether tokens of type t carry an interned label.
func (t Type) HasLabel() bool {
	return t == Identifier || t == StringLiteral
}

// Desc renders the token for diagnostics.
func (tok Token) Desc() string {
	switch tok.Type {
	case EndOfFile:
		return "end-of-file"
	case NewLine:
		return "end-of-line"
	default:
		return "'" + tok.Text + "'"
	}
}
