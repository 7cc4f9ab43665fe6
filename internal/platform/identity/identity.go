package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HeaderUserID is the unauthenticated identity header accepted when no bearer
// token is presented. Local development and tests rely on it.
const HeaderUserID = "X-User-Id"

var (
	ErrNoSecret     = errors.New("identity secret not configured")
	ErrInvalidToken = errors.New("invalid identity token")
	ErrTokenExpired = errors.New("identity token expired")
)

// Resolver extracts the caller identity from a request. A signed bearer token
// carries the identity in the "sub" claim; X-User-Id is the fallback when no
// Authorization header is present. Identities are opaque strings and are
// compared exactly downstream.
type Resolver struct {
	secret []byte
	logger *slog.Logger
	now    func() time.Time
}

func NewResolver(secret string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	var key []byte
	if secret = strings.TrimSpace(secret); secret != "" {
		key = []byte(secret)
	}
	return &Resolver{
		secret: key,
		logger: logger,
		now:    time.Now,
	}
}

// Issue signs a bearer token for the given subject, valid for ttl.
func (r *Resolver) Issue(subject string, ttl time.Duration) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrNoSecret
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrInvalidToken
	}
	now := r.now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Subject validates a bearer token and returns its subject claim.
func (r *Resolver) Subject(token string) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrNoSecret
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(r.now))
	parsed, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(subject), nil
}

// FromRequest resolves the caller identity for one request. A presented but
// invalid bearer token resolves to the empty identity rather than falling
// back to X-User-Id, so a bad token can never impersonate a header identity.
func (r *Resolver) FromRequest(req *http.Request) string {
	authorization := strings.TrimSpace(req.Header.Get("Authorization"))
	if authorization != "" {
		scheme, token, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		subject, err := r.Subject(strings.TrimSpace(token))
		if err != nil {
			r.logger.Warn("bearer token rejected",
				"event", "identity_token_rejected",
				"module", "internal/platform/identity",
				"layer", "platform",
				"error", err.Error(),
			)
			return ""
		}
		return subject
	}
	return strings.TrimSpace(req.Header.Get(HeaderUserID))
}
