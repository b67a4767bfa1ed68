package bootstrap

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/wolfman30/waterbot/internal/reminders"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func mustLookup(t *testing.T, name string) reminders.Reminder {
	t.Helper()
	r, ok := reminders.Lookup(name)
	if !ok {
		t.Fatalf("unknown reminder %s", name)
	}
	return r
}
