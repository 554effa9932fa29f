package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("payment: invalid or expired checkout session")

type SessionRequest struct {
	PaymentID   string
	UserID      string
	CourseID    uint
	CourseTitle string
	Amount      float64
}

type Session struct {
	ID          string
	Token       string
	RedirectURL string
	ExpiresAt   time.Time
}

// Gateway creates hosted checkout sessions and verifies the tokens they hand
// back on return.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifySession(token string) (*SessionClaims, error)
}

type SessionClaims struct {
	PaymentID   string  `json:"pid"`
	CourseID    uint    `json:"cid"`
	CourseTitle string  `json:"title"`
	Amount      float64 `json:"amt"`
	jwt.RegisteredClaims
}

// SignedGateway is the local stand-in for a card processor: a session is an
// HS256 token, and the redirect target is the service's own checkout page.
type SignedGateway struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewSignedGateway(secret, baseURL string, ttl time.Duration) *SignedGateway {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedGateway{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (g *SignedGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	if len(g.secret) == 0 {
		return nil, errors.New("gateway secret is not configured")
	}
	now := g.now()
	sessionID := uuid.NewString()
	claims := SessionClaims{
		PaymentID:   req.PaymentID,
		CourseID:    req.CourseID,
		CourseTitle: req.CourseTitle,
		Amount:      req.Amount,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   req.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("sign checkout session: %w", err)
	}
	return &Session{
		ID:          sessionID,
		Token:       token,
		RedirectURL: g.baseURL + "/payments/checkout?token=" + url.QueryEscape(token),
		ExpiresAt:   now.Add(g.ttl),
	}, nil
}

func (g *SignedGateway) VerifySession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.PaymentID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
