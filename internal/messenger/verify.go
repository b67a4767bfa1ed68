package messenger

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// Header names carrying the payload signature.
const (
	SignatureHeader       = "X-Hub-Signature-256"
	LegacySignatureHeader = "X-Hub-Signature"
)

// Query parameters of the webhook subscription handshake.
const (
	ModeParam        = "hub.mode"
	VerifyTokenParam = "hub.verify_token"
	ChallengeParam   = "hub.challenge"
)

// ErrVerification is returned when a signature or challenge does not match.
var ErrVerification = errors.New("messenger: verification failed")

// VerifySignature checks a "sha256=<hex>" or "sha1=<hex>" signature of body.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	algo, sigHex, ok := strings.Cut(signature, "=")
	if !ok || sigHex == "" {
		return false
	}

	var newHash func() hash.Hash
	switch algo {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}

	mac := hmac.New(newHash, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sigHex)))
}

// VerifyChallenge validates the subscription handshake and returns the challenge to echo.
func VerifyChallenge(verifyToken, mode, token, challenge string) (string, error) {
	if mode != "subscribe" {
		return "", fmt.Errorf("%w: unexpected mode %q", ErrVerification, mode)
	}
	if verifyToken == "" || !hmac.Equal([]byte(token), []byte(verifyToken)) {
		return "", fmt.Errorf("%w: verify token mismatch", ErrVerification)
	}
	return challenge, nil
}
