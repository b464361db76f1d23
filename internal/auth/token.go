package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

// Token is an access token issued by the accounts service.
//
// Tokens are never mutated after they are stored; every grant produces a new one.
type Token struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	ExpiresAt    time.Time
	RefreshToken string
	Scope        string
}

// ExpiringWithin reports whether the token expires at or before now+window.
// Tokens without an expiry never do.
func (t *Token) ExpiringWithin(now time.Time, window time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !t.ExpiresAt.After(now.Add(window))
}

// OAuth2 converts t for use with [oauth2.StaticTokenSource] and friends.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

type tokenJSON struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// MarshalJSON writes expires_at as epoch seconds, 0 for tokens without an expiry.
func (t Token) MarshalJSON() ([]byte, error) {
	var expiresAt int64
	if !t.ExpiresAt.IsZero() {
		expiresAt = t.ExpiresAt.Unix()
	}
	return json.Marshal(tokenJSON{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		ExpiresAt:    expiresAt,
		RefreshToken: t.RefreshToken,
		Scope:        t.Scope,
	})
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Token{
		AccessToken:  raw.AccessToken,
		TokenType:    raw.TokenType,
		ExpiresIn:    raw.ExpiresIn,
		RefreshToken: raw.RefreshToken,
		Scope:        raw.Scope,
	}
	if raw.ExpiresAt > 0 {
		t.ExpiresAt = time.Unix(raw.ExpiresAt, 0).UTC()
	}
	return nil
}

func (t *Token) clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// newToken builds a Token from a token endpoint response. issued is the time the request was sent.
func newToken(tok *oauth2.Token, issued time.Time) (*Token, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", shared.ErrInvalidTokenResponse)
	}

	t := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if t.TokenType == "" {
		t.TokenType = "Bearer"
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		t.Scope = scope
	}

	expiresIn, ok, err := extraSeconds(tok.Extra("expires_in"))
	if err != nil {
		return nil, fmt.Errorf("%w: expires_in: %v", shared.ErrInvalidTokenResponse, err)
	}
	if ok {
		t.ExpiresIn = expiresIn
		t.ExpiresAt = issued.Add(time.Duration(expiresIn) * time.Second)
	}

	return t, nil
}

// extraSeconds reads expires_in from a raw JSON (number) or form (string) token response.
func extraSeconds(v any) (int64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case int:
		return int64(n), true, nil
	case json.Number:
		i, err := n.Int64()
		return i, err == nil, err
	case string:
		if n == "" {
			return 0, false, nil
		}
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil, err
	default:
		return 0, false, fmt.Errorf("unexpected type %T", v)
	}
}
