package server

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SemanticToken represents a raw semantic token with position and classification.
type SemanticToken struct {
	Line      uint32 // 0-based line number
	StartChar uint32 // 0-based start character
	Length    uint32 // Token length
	TokenType uint32 // Index into legend.TokenTypes
	Modifiers uint32 // Bit flags for modifiers
}

// Token type constants for easier reference
const (
	TokenTypeNamespace = "namespace"
	TokenTypeType      = "type"
	TokenTypeStruct    = "struct"
	TokenTypeInterface = "interface"
	TokenTypeParameter = "parameter"
	TokenTypeVariable  = "variable"
	TokenTypeProperty  = "property"
	TokenTypeFunction  = "function"
	TokenTypeMethod    = "method"
)

// Token modifier constants for easier reference
const (
	TokenModifierDeclaration    = "declaration"
	TokenModifierReadonly       = "readonly"
	TokenModifierDefaultLibrary = "defaultLibrary"
)

// SemanticTokensLegend defines the token types and modifiers used by the server.
// The legend must remain consistent across all requests to ensure proper highlighting.
type SemanticTokensLegend struct {
	// TokenTypes is an ordered array of token type strings; tokens refer to them by index.
	TokenTypes []string

	// TokenModifiers is an ordered array of modifier strings; each index is a bit position.
	TokenModifiers []string
}

// NewSemanticTokensLegend creates the legend for Go identifiers.
func NewSemanticTokensLegend() *SemanticTokensLegend {
	return &SemanticTokensLegend{
		TokenTypes: []string{
			TokenTypeNamespace, // imported packages
			TokenTypeType,
			TokenTypeStruct,
			TokenTypeInterface,
			TokenTypeParameter, // parameters and receivers
			TokenTypeVariable,  // variables and constants
			TokenTypeProperty,  // struct fields
			TokenTypeFunction,
			TokenTypeMethod,
		},
		TokenModifiers: []string{
			TokenModifierDeclaration,
			TokenModifierReadonly,
			TokenModifierDefaultLibrary,
		},
	}
}

// ToProtocolLegend converts the legend to the LSP protocol format.
func (l *SemanticTokensLegend) ToProtocolLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     l.TokenTypes,
		TokenModifiers: l.TokenModifiers,
	}
}

// GetTokenTypeIndex returns the index of a token type in the legend.
// Returns -1 if the token type is not found.
func (l *SemanticTokensLegend) GetTokenTypeIndex(tokenType string) int {
	for i, t := range l.TokenTypes {
		if t == tokenType {
			return i
		}
	}
	return -1
}

// GetModifierMask returns the bit mask for the given modifiers.
func (l *SemanticTokensLegend) GetModifierMask(modifiers ...string) uint32 {
	var mask uint32
	for _, modifier := range modifiers {
		for i, m := range l.TokenModifiers {
			if m == modifier {
				mask |= 1 << uint32(i)
				break
			}
		}
	}
	return mask
}

// EncodeSemanticTokens sorts tokens by position and encodes them in the relative five-integer
// form of the protocol. Overlapping tokens after the first are dropped.
func EncodeSemanticTokens(tokens []SemanticToken) []protocol.UInteger {
	sorted := make([]SemanticToken, len(tokens))
	copy(sorted, tokens)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].StartChar < sorted[j].StartChar
	})

	data := make([]protocol.UInteger, 0, len(sorted)*5)

	var prevLine, prevChar, prevEnd uint32
	first := true

	for _, tok := range sorted {
		if !first && tok.Line == prevLine && tok.StartChar < prevEnd {
			continue
		}

		deltaLine := tok.Line - prevLine
		deltaChar := tok.StartChar
		if !first && deltaLine == 0 {
			deltaChar = tok.StartChar - prevChar
		}

		data = append(data, deltaLine, deltaChar, tok.Length, tok.TokenType, tok.Modifiers)

		prevLine, prevChar, prevEnd = tok.Line, tok.StartChar, tok.StartChar+tok.Length
		first = false
	}

	return data
}
