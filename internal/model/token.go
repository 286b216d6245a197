package model

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// TokenSize is the fixed length of a concurrency token in bytes.
const TokenSize = uuid.Size

// Token is an opaque concurrency token regenerated by the storage layer on every write.
// It is compared by value and never interpreted.
type Token []byte

// NewToken returns a fresh random token.
func NewToken() (Token, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return Token(id.Bytes()), nil
}

// Equal reports whether two tokens hold the same bytes.
func (t Token) Equal(o Token) bool { return bytes.Equal(t, o) }

// String renders the token as lowercase hex.
func (t Token) String() string { return hex.EncodeToString(t) }

// ParseToken decodes a hex token as produced by String.
func ParseToken(s string) (Token, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if len(b) != TokenSize {
		return nil, fmt.Errorf("parse token: want %d bytes, got %d", TokenSize, len(b))
	}
	return Token(b), nil
}
