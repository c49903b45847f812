package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// ScopePro is the only scope the gateway grants.
	ScopePro = "pro"
	// TokenTTL is the lifetime of an issued credential.
	TokenTTL = 30 * 24 * time.Hour
	// MinSecretLen is the minimum HMAC secret length.
	MinSecretLen = 32
)

var (
	ErrWeakSecret   = fmt.Errorf("jwt secret must be at least %d characters", MinSecretLen)
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the credential payload.
type Claims struct {
	Scope  string `json:"scope"`
	Chain  string `json:"chain"`
	Token  string `json:"token"`
	TxHash string `json:"txHash"`
	Amount string `json:"amount"`
	jwt.RegisteredClaims
}

// Grant carries the verified payment facts embedded in a credential.
type Grant struct {
	Chain  string
	Token  string
	TxHash string
	Amount string
}

// Issuer mints and validates HS256 credentials. It holds no state beyond
// the secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer creates an issuer. now stamps issued credentials and may be nil.
func NewIssuer(secret string, now func() time.Time) (*Issuer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), now: now}, nil
}

// Issue signs a credential for g valid for TokenTTL.
func (i *Issuer) Issue(g Grant) (string, error) {
	iat := i.now()
	claims := Claims{
		Scope:  ScopePro,
		Chain:  g.Chain,
		Token:  g.Token,
		TxHash: g.TxHash,
		Amount: g.Amount,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm and expiry and returns the claims.
func (i *Issuer) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
