package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef"

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens(Subject{UserID: 7, Email: "ada@example.com", Role: "editor"}, testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	claims, err := ParseClaims(pair.AccessToken, testSecret, KindAccess)
	if err != nil {
		t.Fatalf("ParseClaims() error = %v", err)
	}
	if claims.UserID != 7 || claims.Role != "editor" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseClaims(pair.RefreshToken, testSecret, KindRefresh); err != nil {
		t.Errorf("refresh token rejected: %v", err)
	}
}

func TestParseClaims_Rejects(t *testing.T) {
	pair, err := MintTokens(Subject{UserID: 1}, testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	if _, err := ParseClaims(pair.RefreshToken, testSecret, KindAccess); !errors.Is(err, ErrWrongKind) {
		t.Errorf("refresh as access: err = %v, want ErrWrongKind", err)
	}
	if _, err := ParseClaims(pair.AccessToken, "another-secret-value", KindAccess); err == nil {
		t.Error("expected signature error")
	}

	expired, err := MintTokens(Subject{UserID: 1}, testSecret, -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if _, err := ParseClaims(expired.AccessToken, testSecret, KindAccess); err == nil {
		t.Error("expected expiry error")
	}
}
