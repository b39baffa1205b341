// Package crypto signs authenticated venue REST requests.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// HMACAuth holds the credentials required for HMAC-authenticated venue
// requests.
type HMACAuth struct {
	Key        string // API key
	Secret     string // API secret
	Passphrase string // API passphrase (KuCoin only)
}

// KuCoinHeaders returns the headers for a KuCoin v2 API key request.
// The signature is HMAC-SHA256(secret, timestamp+method+path+body) encoded
// as base64; the passphrase is signed with the same secret.
func (h *HMACAuth) KuCoinHeaders(method, path, body string) map[string]string {
	return h.KuCoinHeadersAt(method, path, body, time.Now().UnixMilli())
}

// KuCoinHeadersAt is like KuCoinHeaders but takes the timestamp in Unix
// milliseconds.
func (h *HMACAuth) KuCoinHeadersAt(method, path, body string, unixMillis int64) map[string]string {
	ts := strconv.FormatInt(unixMillis, 10)
	secret := []byte(h.Secret)

	return map[string]string{
		"KC-API-KEY":         h.Key,
		"KC-API-SIGN":        hmacSHA256Base64(secret, ts+method+path+body),
		"KC-API-TIMESTAMP":   ts,
		"KC-API-PASSPHRASE":  hmacSHA256Base64(secret, h.Passphrase),
		"KC-API-KEY-VERSION": "2",
	}
}

// GateHeaders returns the headers for a Gate.io v4 API request. The signed
// payload is method, path, query, hex(SHA512(body)) and timestamp joined by
// newlines, signed with HMAC-SHA512 and hex encoded.
func (h *HMACAuth) GateHeaders(method, path, query, body string) map[string]string {
	return h.GateHeadersAt(method, path, query, body, time.Now().Unix())
}

// GateHeadersAt is like GateHeaders but takes the timestamp in Unix seconds.
func (h *HMACAuth) GateHeadersAt(method, path, query, body string, unixTS int64) map[string]string {
	ts := strconv.FormatInt(unixTS, 10)
	bodyHash := sha512.Sum512([]byte(body))
	payload := method + "\n" + path + "\n" + query + "\n" + hex.EncodeToString(bodyHash[:]) + "\n" + ts

	mac := hmac.New(sha512.New, []byte(h.Secret))
	mac.Write([]byte(payload))

	return map[string]string{
		"KEY":       h.Key,
		"Timestamp": ts,
		"SIGN":      hex.EncodeToString(mac.Sum(nil)),
	}
}

// hmacSHA256Base64 computes HMAC-SHA256 of message using key and returns the
// result as a base64 standard-encoded string.
func hmacSHA256Base64(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}
