package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/salescore/internal/domain/auth"
)

// APIKeyAuth authenticates requests via the api_key header. The raw key is
// HMAC-SHA256 hashed with the server pepper and looked up by hash, then
// compared in constant time to guard against timing side-channels.
func APIKeyAuth(apikeys auth.Repository, pepper []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("api_key")
			if raw == "" {
				unauthorized(w)
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(raw))
			hash := mac.Sum(nil)

			key, err := apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
			if err != nil {
				unauthorized(w)
				return
			}

			stored, err := hex.DecodeString(key.KeyHash)
			if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"errors":[{"code":"unauthorized","message":"invalid or missing api key"}]}`))
}
