package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerationClaim carries the store generation a local API token was issued
// for.
const GenerationClaim = "gen"

// TokenIssuer mints the bearer tokens the presentation layer uses against the
// local API. A token is only good for the generation it was issued in.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (t *TokenIssuer) Secret() []byte {
	return t.secret
}

func (t *TokenIssuer) Issue(snap Snapshot) (string, error) {
	if !snap.Authenticated() || snap.User == nil {
		return "", errors.New("cannot issue a token without a signed-in user")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           snap.User.ID,
		"role":          string(snap.Role()),
		"mode":          string(snap.Mode()),
		GenerationClaim: snap.Generation,
		"iat":           now.Unix(),
		"exp":           now.Add(t.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}
