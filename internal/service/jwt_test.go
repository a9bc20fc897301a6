package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateAdminJWT()
	if err != nil {
		t.Fatalf("GenerateAdminJWT: %v", err)
	}
	if err := ValidateAdminJWT(token); err != nil {
		t.Errorf("ValidateAdminJWT: %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if err := ValidateAdminJWT(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAdminJWT(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	InitJWT("secret-one")
	token, err := GenerateAdminJWT()
	if err != nil {
		t.Fatalf("GenerateAdminJWT: %v", err)
	}

	InitJWT("secret-two")
	if err := ValidateAdminJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with old secret validated: %v", err)
	}
}

func TestValidateRejectsMissingRole(t *testing.T) {
	InitJWT("test-secret")

	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := ValidateAdminJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("roleless token validated: %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	InitJWT("test-secret")

	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := ValidateAdminJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token validated: %v", err)
	}
}

func TestGenerateWithoutSecret(t *testing.T) {
	InitJWT("")
	if _, err := GenerateAdminJWT(); err == nil {
		t.Error("GenerateAdminJWT succeeded without a secret")
	}
}
