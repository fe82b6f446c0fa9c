// Package auth adapts the externally issued bearer credential to the
// AuthProvider port.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
)

// BearerProvider holds the JWT handed over by the login flow. The token is
// considered authenticated while it parses against the shared secret and
// its exp claim is in the future; issuing and refreshing tokens is not this
// package's job.
type BearerProvider struct {
	secret []byte

	mu    sync.RWMutex
	token string
}

var _ ports.AuthProvider = (*BearerProvider)(nil)

func NewBearerProvider(secret string) *BearerProvider {
	return &BearerProvider{secret: []byte(secret)}
}

func (p *BearerProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = strings.TrimPrefix(token, "Bearer ")
}

func (p *BearerProvider) ClearToken() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}

func (p *BearerProvider) Token() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.token == "" {
		return "", myerrors.ErrNotAuthenticated
	}
	return p.token, nil
}

func (p *BearerProvider) IsAuthenticated() bool {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token == "" {
		return false
	}

	tokenJWT, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil || !tokenJWT.Valid {
		return false
	}
	claims, ok := tokenJWT.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Now().Unix() < int64(exp)
}
