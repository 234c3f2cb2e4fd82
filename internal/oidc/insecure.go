package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shariqkhan335/RFI-PROJ/pkg/middleware"
)

var errNoSubject = errors.New("token has no subject")

type unverifiedToken struct {
	claims jwt.MapClaims
}

func (t *unverifiedToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// InsecureVerifier accepts any well-formed JWT without checking its
// signature, expiry or issuer. It exists for local runs of the inventory
// with ALLOW_INSECURE_TOKEN=true, where the editor name is taken from the
// token subject.
type InsecureVerifier struct {
	parser *jwt.Parser
}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{parser: jwt.NewParser()}
}

func (v *InsecureVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("read token claims: %w", err)
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errNoSubject
	}
	return &unverifiedToken{claims: claims}, nil
}
