package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const nameClaim = "name"

var (
	ErrAnonymous    = errors.New("current identity is not set")
	ErrInvalidToken = errors.New("invalid identity token")
)

// Provider tells who is acting. The name ends up as the host of created events.
type Provider interface {
	Current(ctx context.Context) (string, error)
}

// Static always returns the same name.
type Static string

func (s Static) Current(_ context.Context) (string, error) {
	name := strings.TrimSpace(string(s))
	if name == "" {
		return "", ErrAnonymous
	}
	return name, nil
}

// Token takes the name from a HS256 token issued elsewhere: the "name" claim, or "sub" without it.
type Token struct {
	raw    string
	secret []byte
}

func NewToken(raw string, secret string) *Token {
	return &Token{raw: strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")), secret: []byte(secret)}
}

func (t *Token) Current(_ context.Context) (string, error) {
	if t.raw == "" {
		return "", ErrAnonymous
	}

	token, err := jwt.Parse(t.raw, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if name, ok := claims[nameClaim].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name), nil
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(sub) == "" {
		return "", fmt.Errorf("%w: no name in claims", ErrAnonymous)
	}
	return strings.TrimSpace(sub), nil
}
