package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	Init("test-secret-0123456789-abcdefghijkl", 1)
	token, err := GenerateToken(42)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d", claims.UserID)
	}
	if Expiry() != time.Hour {
		t.Errorf("Expiry = %v", Expiry())
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	Init("first-secret-0123456789-abcdefghijk", 1)
	token, err := GenerateToken(1)
	if err != nil {
		t.Fatal(err)
	}
	Init("second-secret-0123456789-abcdefghij", 1)
	if _, err := ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage must be rejected")
	}
}
