// Package session binds opaque login tokens to user ids.
package session

import (
	"encoding/base64"
	"errors"

	"github.com/gorilla/securecookie"
)

const tokenBytes = 32

var errNoEntropy = errors.New("session: could not generate token")

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	key := securecookie.GenerateRandomKey(tokenBytes)
	if key == nil {
		return "", errNoEntropy
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
