// ABOUTME: Tests for JWT issuing and verification
// ABOUTME: Covers round trips, expiration, wrong secrets, and claim validation

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerify(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))

	token, err := verifier.Generate("admin", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	subject, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want %q", subject, "admin")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))

	token, err := verifier.Generate("admin", -time.Minute)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewJWTVerifier([]byte("secret-a"))
	verifier := NewJWTVerifier([]byte("secret-b"))

	token, err := issuer.Generate("admin", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	if _, err := verifier.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	secret := []byte("test-secret")
	claims := jwt.MapClaims{
		"iss": Issuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	verifier := NewJWTVerifier(secret)
	if _, err := verifier.Verify(token); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("err = %v, want ErrMissingClaim", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	secret := []byte("test-secret")
	claims := jwt.MapClaims{
		"iss": "someone-else",
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	verifier := NewJWTVerifier(secret)
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsUnexpectedAlg(t *testing.T) {
	// An unsigned token must never verify, whatever its claims say.
	claims := jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	verifier := NewJWTVerifier([]byte("test-secret"))
	if _, err := verifier.Verify(token); err == nil {
		t.Error("expected error for alg=none token")
	}
}
