package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators embedded in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a signed token.
type Claims struct {
	Subject   string
	Type      string
	Roles     []string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints and validates HS256-signed access and refresh tokens. It is
// stateless and performs no I/O; revocation is layered on top by callers.
type Codec struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewCodec(secret string, accessExpiry, refreshExpiry time.Duration) *Codec {
	return &Codec{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (c *Codec) RefreshExpiry() time.Duration {
	return c.refreshExpiry
}

// MintAccess signs an access token carrying the subject and its roles.
func (c *Codec) MintAccess(subject string, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"type":  TypeAccess,
		"iat":   now.Unix(),
		"exp":   now.Add(c.accessExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// MintRefresh signs a refresh token bound to a ledger session id.
func (c *Codec) MintRefresh(subject, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       subject,
		"sessionId": sessionID,
		"type":      TypeRefresh,
		"iat":       now.Unix(),
		"exp":       now.Add(c.refreshExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate reports whether the token is well-formed, signed with our key and
// unexpired. It never returns an error: any malformed input is simply false.
func (c *Codec) Validate(tokenString string) bool {
	_, err := c.parse(tokenString)
	return err == nil
}

// Claims decodes a token previously accepted by Validate. Callers must
// validate first; an invalid token returns ErrInvalidToken.
func (c *Codec) Claims(tokenString string) (*Claims, error) {
	mapClaims, err := c.parse(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Type, _ = mapClaims["type"].(string)
	claims.SessionID, _ = mapClaims["sessionId"].(string)

	if rawRoles, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}

func (c *Codec) parse(tokenString string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return mapClaims, nil
}
