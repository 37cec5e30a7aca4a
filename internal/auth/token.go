package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "roomloop"

// Identity is the authenticated user behind a request or connection.
type Identity struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Claims is the JWT payload shared by the REST API and the socket handshake.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier signs and validates bearer tokens with a single HMAC secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier constructs a Verifier.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the identity.
func (v *Verifier) Issue(id Identity) (string, error) {
	now := v.now()
	claims := &Claims{
		UserID:   id.ID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify decodes a raw token into an Identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(v.now))
	if err != nil {
		return Identity{}, invalid(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, invalid(jwt.ErrSignatureInvalid)
	}
	if claims.UserID == "" {
		return Identity{}, invalid(errors.New("token has no subject id"))
	}
	return Identity{ID: claims.UserID, Username: claims.Username}, nil
}

// TokenFromHeader extracts the token from an "Authorization: Bearer <token>" value.
// Anything that is not a bearer credential yields an empty string.
func TokenFromHeader(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
