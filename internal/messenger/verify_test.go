package messenger

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func sign256(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_app_secret"
	body := []byte(`{"object":"page","entry":[]}`)

	sha1Mac := hmac.New(sha1.New, []byte(secret))
	sha1Mac.Write(body)
	legacySig := "sha1=" + hex.EncodeToString(sha1Mac.Sum(nil))

	tests := []struct {
		name      string
		secret    string
		signature string
		want      bool
	}{
		{"valid sha256", secret, sign256(secret, body), true},
		{"valid legacy sha1", secret, legacySig, true},
		{"wrong secret", "other", sign256(secret, body), false},
		{"empty signature", secret, "", false},
		{"empty secret", "", sign256(secret, body), false},
		{"missing prefix", secret, "deadbeef", false},
		{"unknown algorithm", secret, "md5=abcd", false},
		{"prefix only", secret, "sha256=", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, body, tt.signature); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyChallenge(t *testing.T) {
	got, err := VerifyChallenge("verify", "subscribe", "verify", "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "12345" {
		t.Errorf("challenge = %q, want 12345", got)
	}

	for _, tc := range []struct{ mode, token string }{
		{"subscribe", "wrong"},
		{"unsubscribe", "verify"},
		{"", ""},
	} {
		if _, err := VerifyChallenge("verify", tc.mode, tc.token, "12345"); !errors.Is(err, ErrVerification) {
			t.Errorf("mode=%q token=%q: expected ErrVerification, got %v", tc.mode, tc.token, err)
		}
	}
}
