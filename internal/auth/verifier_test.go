package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signHS256(t *testing.T, secret, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + body))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return header + "." + body + "." + sig
}

func TestVerifyDevToken(t *testing.T) {
	v := &Verifier{Mode: "dev"}
	p, err := v.Verify("role:dispatcher")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Role != "dispatcher" {
		t.Fatalf("role: %s", p.Role)
	}
	if _, err := v.Verify("garbage"); err == nil {
		t.Fatal("expected error for malformed dev token")
	}
}

func TestVerifyHS256(t *testing.T) {
	v := &Verifier{Mode: "hmac", HMACSecret: []byte("secret"), RoleClaim: "role"}
	tok := signHS256(t, "secret", `{"role":"Admin","sub":"u1"}`)
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Role != "admin" || p.Subject != "u1" {
		t.Fatalf("principal: %+v", p)
	}
}

func TestVerifyHS256BadSignature(t *testing.T) {
	v := &Verifier{Mode: "hmac", HMACSecret: []byte("secret"), RoleClaim: "role"}
	tok := signHS256(t, "wrong", `{"role":"admin"}`)
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected bad signature error")
	}
}
