package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the HMAC of the delivery body.
const SignatureHeader = "X-Signature"

// SignHMAC returns "sha256=<hex>" over the raw body using the
// subscription secret.
func SignHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks a signature produced by SignHMAC. The "sha256="
// prefix is optional on the provided value.
func VerifyHMAC(secret string, body []byte, provided string) bool {
	provided = strings.TrimPrefix(provided, "sha256=")
	b, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), b)
}
