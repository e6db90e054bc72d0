package auth

import (
	"errors"
	"fmt"

	jwt "github.com/form3tech-oss/jwt-go"
)

var ErrInvalidToken = errors.New("invalid token")

// Subject returns the user a token was issued to.
func Subject(token *jwt.Token) (string, bool) {
	if token == nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	id, ok := claims["user_id"].(string)
	return id, ok && id != ""
}

// Verify checks an HS256 token signed with secret and returns its subject.
func Verify(secret []byte, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, ok := Subject(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return id, nil
}
