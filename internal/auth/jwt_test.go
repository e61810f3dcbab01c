package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateAccessToken("bot-42", ScopeBot)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.ClientID != "bot-42" {
		t.Errorf("expected client_id=bot-42, got %s", claims.ClientID)
	}
	if claims.Scope != ScopeBot {
		t.Errorf("expected scope=bot, got %s", claims.Scope)
	}
	if claims.Subject != "bot-42" {
		t.Errorf("expected subject=bot-42, got %s", claims.Subject)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	refresh, err := mgr.GenerateRefreshToken("viewer-1", ScopeObserver)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	if _, err := mgr.ValidateToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	claims, err := mgr.ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if claims.ClientID != "viewer-1" || claims.Scope != ScopeObserver {
		t.Errorf("unexpected claims %+v", claims)
	}

	access, _ := mgr.GenerateAccessToken("viewer-1", ScopeObserver)
	if _, err := mgr.ValidateRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	pair, err := mgr.GenerateTokenPair("bot-7", ScopeBot)
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected non-empty tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should be different")
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expected expires_in=900, got %d", pair.ExpiresIn)
	}
	if pair.Scope != ScopeBot {
		t.Errorf("expected scope=bot, got %s", pair.Scope)
	}

	if _, err := mgr.GenerateTokenPair("bot-7", "admin"); !errors.Is(err, ErrWrongScope) {
		t.Errorf("expected ErrWrongScope, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr1 := NewJWTManager("secret-one")
	mgr2 := NewJWTManager("secret-two")

	token, err := mgr1.GenerateAccessToken("bot-1", ScopeBot)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := mgr2.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	if _, err := mgr.ValidateToken("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
	if _, err := mgr.ValidateToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestExpiredToken(t *testing.T) {
	mgr := &JWTManager{
		secret:        []byte("test-secret"),
		accessExpiry:  -1 * time.Second,
		refreshExpiry: 7 * 24 * time.Hour,
	}
	token, err := mgr.GenerateAccessToken("bot-1", ScopeBot)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := mgr.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}
