package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "storefront-backend"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager выпускает и проверяет токены доступа, подписанные HS256.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(cfg *cfg.AuthCfg) *JWTManager {
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

func (m *JWTManager) Issue(principal domain.Principal) (string, time.Time, error) {
	const op = "JWTManager.Issue"

	now := m.now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, e.Wrap(op, err)
	}

	return signed, expiresAt, nil
}

func (m *JWTManager) Parse(token string) (domain.Principal, error) {
	const op = "JWTManager.Parse"

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Principal{}, e.Wrap(op, errors.Join(e.ErrUnauthorized, err))
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.Principal{}, e.Wrap(op, errors.Join(e.ErrUnauthorized, err))
	}

	role, ok := domain.ParseRole(c.Role)
	if !ok || c.Role == "" {
		return domain.Principal{}, e.Wrap(op, fmt.Errorf("%w: role %q", e.ErrUnauthorized, c.Role))
	}

	return domain.Principal{UserID: userID, Role: role}, nil
}
