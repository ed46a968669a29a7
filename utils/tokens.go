package utils

import (
	"time"

	"github.com/kataras/iris/v12/middleware/jwt"
)

// AccessToken is the claims shape the auth collaborator issues. The
// booking core only ever reads the guest id off it.
type AccessToken struct {
	ID uint `json:"ID"`
}

// CreateAccessToken signs a guest token; used by the auth surface and the
// route tests.
func CreateAccessToken(id uint, secret string) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, secret, 24*time.Hour)
	token, err := signer.Sign(AccessToken{ID: id})
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// NewAccessTokenVerifier builds the iris middleware that authenticates
// guests. The secret comes from configuration, not from package state.
func NewAccessTokenVerifier(secret string) *jwt.Verifier {
	verifier := jwt.NewVerifier(jwt.HS256, []byte(secret))
	verifier.WithDefaultBlocklist()
	return verifier
}
