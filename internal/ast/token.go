package ast

// TokenKind classifies a lexical token. Values match the host tokenizer's
// TokenKind names.
type TokenKind string

const (
	TokenComment       TokenKind = "Comment"
	TokenNewLine       TokenKind = "NewLine"
	TokenLineContinue  TokenKind = "LineContinuation"
	TokenVariable      TokenKind = "Variable"
	TokenSplatted      TokenKind = "SplattedVariable"
	TokenParameter     TokenKind = "Parameter"
	TokenGeneric       TokenKind = "Generic"
	TokenIdentifier    TokenKind = "Identifier"
	TokenNumber        TokenKind = "Number"
	TokenStringLiteral TokenKind = "StringLiteral"
	TokenStringExpand  TokenKind = "StringExpandable"
	TokenHereLiteral   TokenKind = "HereStringLiteral"
	TokenHereExpand    TokenKind = "HereStringExpandable"
	TokenLCurly        TokenKind = "LCurly"
	TokenRCurly        TokenKind = "RCurly"
	TokenLParen        TokenKind = "LParen"
	TokenRParen        TokenKind = "RParen"
	TokenExclaim       TokenKind = "Exclaim"
	TokenEndOfInput    TokenKind = "EndOfInput"
)

// Token is one lexical token of the script.
type Token struct {
	Kind   TokenKind `json:"kind"`
	Text   string    `json:"text"`
	Extent Extent    `json:"extent"`
}

// IsString reports whether the token is any kind of string literal.
func (t Token) IsString() bool {
	switch t.Kind {
	case TokenStringLiteral, TokenStringExpand, TokenHereLiteral, TokenHereExpand:
		return true
	default:
		return false
	}
}
