package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for every token that cannot be
// trusted: malformed encodings, bad signatures and expired tokens alike.
// Verification failure is a normal outcome since the input is
// attacker-controlled, so callers check with errors.Is rather than
// treating it as a fault.
var ErrInvalidToken = errors.New("invalid token")

// Role is the closed set of account roles transported inside a token.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// ParseRole maps a raw role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Claim is the verified identity extracted from a token.
type Claim struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the request-scoped identity derived from a verified Claim.
// It is immutable and carried explicitly through the call chain.
type Principal struct {
	SubjectID string
	Role      Role
}

// Claims is the JWT payload shape for sokoni tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed identity tokens.
type Codec struct {
	secret []byte
	leeway time.Duration
}

// NewCodec returns a Codec signing with the given shared secret.
// leeway is the tolerated clock skew when verifying expiry; zero means
// the verifier's wall clock is trusted exactly.
func NewCodec(secret string, leeway time.Duration) *Codec {
	return &Codec{secret: []byte(secret), leeway: leeway}
}

// Issue creates a signed token for the subject. The token carries the
// subject id, its role and an expiry of now+ttl. Issue has no side
// effects beyond reading the clock.
func (c *Codec) Issue(subjectID string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    "https://sokoni.sokocrafts.io/",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token and returns the Claim it carries.
// A token is rejected from its expiry instant onward (minus the
// configured leeway). Verify never panics on malformed input.
func (c *Codec) Verify(tokenString string) (Claim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// Ensure the token is signed with the expected method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithLeeway(c.leeway))

	if err != nil {
		return Claim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claim{}, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || claims.Subject == "" {
		return Claim{}, fmt.Errorf("%w: missing required claims", ErrInvalidToken)
	}

	claim := Claim{
		SubjectID: claims.Subject,
		Role:      Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		claim.IssuedAt = claims.IssuedAt.Time
	}
	return claim, nil
}
