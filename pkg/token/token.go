package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed validity window of every minted credential. There is no
// early revocation: a token stays valid for the video provider until expiry
// even after its session row goes inactive.
const TTL = 24 * time.Hour

var ErrMissingSecret = errors.New("stream credentials not configured")

// Signer mints HS256 credentials compatible with the video provider's
// token format: claims are exactly {user_id, iat, exp}. Output is
// deterministic for a given claims set and secret.
type Signer struct {
	keyID  string
	secret []byte
}

func NewSigner(keyID, secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{keyID: keyID, secret: []byte(secret)}, nil
}

// KeyID is the public key identifier handed to clients alongside a token
// so they can attach to the video provider directly.
func (s *Signer) KeyID() string {
	return s.keyID
}

func (s *Signer) Mint(userID string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the user_id claim.
func (s *Signer) Verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("token has no user_id claim")
	}
	return userID, nil
}
