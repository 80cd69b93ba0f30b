package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/filegate/internal/config"
	"github.com/dmitrymomot/filegate/internal/gateway"
)

// Claim extraction errors. A request that fails extraction is still routed
// to the gateway with no claims and answered with 401.
var (
	ErrInvalidToken        = errors.New("server: invalid bearer token")
	ErrInvalidClaimsHeader = errors.New("server: invalid claims header")
)

// ClaimsExtractor yields the trusted claims of the caller.
// A request without credentials yields nil claims and no error.
type ClaimsExtractor interface {
	Claims(r *http.Request) (gateway.Claims, error)
}

// defaultLeeway tolerates clock skew on exp and nbf.
const defaultLeeway = 30 * time.Second

// TokenClaims extracts claims from an Authorization bearer JWT, or from a
// JSON claims header set by a trusted upstream authorizer.
type TokenClaims struct {
	parser        *jwt.Parser
	secret        []byte
	claimsHeader  string
	trustUpstream bool
}

// NewTokenClaims builds an extractor from auth settings.
func NewTokenClaims(cfg config.AuthConfig) *TokenClaims {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithLeeway(defaultLeeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &TokenClaims{
		parser:        jwt.NewParser(opts...),
		secret:        []byte(cfg.HMACSecret),
		claimsHeader:  cfg.ClaimsHeader,
		trustUpstream: cfg.TrustUpstream,
	}
}

// Claims implements ClaimsExtractor.
func (t *TokenClaims) Claims(r *http.Request) (gateway.Claims, error) {
	if t.trustUpstream && t.claimsHeader != "" {
		if raw := r.Header.Get(t.claimsHeader); raw != "" {
			var m map[string]any
			if err := json.Unmarshal([]byte(raw), &m); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidClaimsHeader, err)
			}
			return normalizeClaims(m), nil
		}
	}

	token, ok := bearerToken(r)
	if !ok {
		return nil, nil
	}

	mc := jwt.MapClaims{}
	switch {
	case len(t.secret) > 0:
		_, err := t.parser.ParseWithClaims(token, mc, func(*jwt.Token) (any, error) {
			return t.secret, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	case t.trustUpstream:
		// Signature was checked by the upstream authorizer.
		if _, _, err := t.parser.ParseUnverified(token, mc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	default:
		return nil, fmt.Errorf("%w: no verification key configured", ErrInvalidToken)
	}

	return normalizeClaims(mc), nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(auth[7:])
	return token, token != ""
}

// normalizeClaims keeps scalar claims as strings. Arrays and objects are dropped.
func normalizeClaims(m map[string]any) gateway.Claims {
	claims := make(gateway.Claims, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case string:
			claims[k] = v
		case float64:
			claims[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			claims[k] = strconv.FormatBool(v)
		case json.Number:
			claims[k] = v.String()
		}
	}
	return claims
}
