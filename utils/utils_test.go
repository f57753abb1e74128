package utils

import (
	"testing"

	"kanbanly/config"
	"kanbanly/models"
)

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(first) != 64 { // hex doubles the byte count
		t.Errorf("token length = %d, want 64", len(first))
	}

	second, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if first == second {
		t.Error("two tokens collided")
	}
}

func TestHashToken(t *testing.T) {
	first := HashToken("refresh-token-a")
	if len(first) != 64 { // hex SHA-256
		t.Errorf("digest length = %d, want 64", len(first))
	}
	if first != HashToken("refresh-token-a") {
		t.Error("same token hashed to different digests")
	}
	if first == HashToken("refresh-token-b") {
		t.Error("distinct tokens collided")
	}
	if first == "refresh-token-a" {
		t.Error("token stored unhashed")
	}
}

func TestParseUint(t *testing.T) {
	tests := []struct {
		in   string
		want uint
	}{
		{"42", 42},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := ParseUint(tt.in); got != tt.want {
			t.Errorf("ParseUint(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{TokenVersion: 3}
	user.ID = 42

	access, refresh, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty token returned")
	}

	claims, err := ParseJWTToken(access)
	if err != nil {
		t.Fatalf("ParseJWTToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
}

func TestParseJWTRejectsTampering(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{}
	user.ID = 1
	access, _, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	config.AppConfig.JWTSecret = "different-secret"
	if _, err := ParseJWTToken(access); err == nil {
		t.Error("token validated against the wrong secret")
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Role  string `validate:"required,oneof=admin editor viewer"`
	}

	if err := ValidateStruct(payload{Email: "a@b.co", Role: "editor"}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := ValidateStruct(payload{Email: "nope", Role: "editor"}); err == nil {
		t.Error("bad email accepted")
	}
	if err := ValidateStruct(payload{Email: "a@b.co", Role: "superadmin"}); err == nil {
		t.Error("role outside oneof accepted")
	}
}
