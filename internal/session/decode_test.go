package session

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/sweetshop/internal/model"
)

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return token
}

func TestDecode(t *testing.T) {
	token := makeToken(t, jwt.MapClaims{"email": "ana@example.com", "name": "Ana", "role": "admin"})

	id, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Email != "ana@example.com" || id.Name != "Ana" || id.Role != model.RoleAdmin {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestDecodeDefaultsRoleToUser(t *testing.T) {
	tests := []jwt.MapClaims{
		{"email": "bo@example.com", "name": "Bo"},
		{"email": "bo@example.com", "name": "Bo", "role": ""},
		{"email": "bo@example.com", "role": 7},
		{},
	}
	for _, claims := range tests {
		id, err := Decode(makeToken(t, claims))
		if err != nil {
			t.Fatalf("Decode(%v): %v", claims, err)
		}
		if id.Role != model.RoleUser {
			t.Errorf("Decode(%v) role = %q, want %q", claims, id.Role, model.RoleUser)
		}
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"email":"x@example.com","name":"X"}`))
	id, err := Decode("garbage." + payload + ".not-a-signature")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Name != "X" {
		t.Errorf("expected name X, got %q", id.Name)
	}
}

func TestDecodeStandardAlphabet(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"name":"??>","role":"admin"}`))
	id, err := Decode("h." + payload + ".s")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Role != model.RoleAdmin {
		t.Errorf("expected admin, got %q", id.Role)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid := makeToken(t, jwt.MapClaims{"name": "Ana"})
	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	nullJSON := base64.RawURLEncoding.EncodeToString([]byte("null"))

	tests := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   "abc.def",
		"four segments":  valid + ".extra",
		"invalid base64": "a.!!!.c",
		"empty payload":  "a..c",
		"invalid json":   "a." + notJSON + ".c",
		"null payload":   "a." + nullJSON + ".c",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(token)
			if !errors.Is(err, ErrTokenDecode) {
				t.Errorf("expected ErrTokenDecode, got %v", err)
			}
		})
	}
}
