package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"
)

// SignHMACSHA512 returns the lowercase hex HMAC-SHA512 of raw.
func SignHMACSHA512(secret string, raw []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

// hmacVerifier memeriksa header x-paystack-signature.
type hmacVerifier struct {
	secret        string
	allowUnsigned bool
	log           zerolog.Logger
}

func (v hmacVerifier) verify(raw []byte, header string) error {
	if v.secret == "" {
		if !v.allowUnsigned {
			return &Error{Op: "verify webhook", Message: "no webhook secret configured", Err: ErrInvalidSignature}
		}
		v.log.Warn().Int("bytes", len(raw)).Msg("accepting unsigned webhook: no secret configured and WEBHOOK_ALLOW_UNSIGNED=true")
		return nil
	}

	got := strings.ToLower(strings.TrimSpace(header))
	if got == "" {
		return &Error{Op: "verify webhook", Message: "missing signature header", Err: ErrInvalidSignature}
	}
	want := SignHMACSHA512(v.secret, raw)
	if !hmac.Equal([]byte(got), []byte(want)) {
		return &Error{Op: "verify webhook", Message: "signature mismatch", Err: ErrInvalidSignature}
	}
	return nil
}
