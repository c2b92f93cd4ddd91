// Package auth verifies Telegram WebApp initData credentials.
//
// https://core.telegram.org/bots/webapps#validating-data-received-via-the-web-app
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/weks-labs/rewards-bot/internal/domain"
)

const (
	// signingLabel is the fixed domain-separation label Telegram prescribes
	// for deriving the per-bot signing key from the bot token.
	signingLabel = "WebAppData"

	// DefaultName is used when the user payload carries no first name.
	DefaultName = "Player"
)

var (
	// ErrMalformedInitData indicates the credential could not be parsed or
	// lacks a required field.
	ErrMalformedInitData = errors.New("malformed init data")

	// ErrInvalidSignature indicates the credential failed the HMAC check.
	ErrInvalidSignature = errors.New("invalid init data signature")
)

// Verify authenticates a raw initData query string against the bot token and
// extracts the embedded user identity. The signature covers every field, so
// tampering with any of them fails verification, not just the user payload.
func Verify(initData, botToken string) (*domain.Identity, error) {
	if initData == "" || botToken == "" {
		return nil, ErrMalformedInitData
	}

	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInitData, err)
	}

	suppliedHash := params.Get("hash")
	if suppliedHash == "" {
		return nil, fmt.Errorf("%w: missing hash field", ErrMalformedInitData)
	}
	params.Del("hash")

	if !hmac.Equal([]byte(expectedHash(params, botToken)), []byte(suppliedHash)) {
		return nil, ErrInvalidSignature
	}

	return identityFromParams(params)
}

// expectedHash rebuilds the data-check string (non-hash fields sorted by key,
// joined as key=value lines) and signs it with the derived secret key.
func expectedHash(params url.Values, botToken string) string {
	entries := make([]string, 0, len(params))
	for key, values := range params {
		for _, value := range values {
			entries = append(entries, key+"="+value)
		}
	}
	sort.Strings(entries)
	dataCheckString := strings.Join(entries, "\n")

	secret := hmac.New(sha256.New, []byte(signingLabel))
	secret.Write([]byte(botToken))

	sig := hmac.New(sha256.New, secret.Sum(nil))
	sig.Write([]byte(dataCheckString))

	return hex.EncodeToString(sig.Sum(nil))
}

func identityFromParams(params url.Values) (*domain.Identity, error) {
	userJSON := params.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: missing user field", ErrMalformedInitData)
	}

	var payload struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
	}
	if err := json.Unmarshal([]byte(userJSON), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode user payload: %v", ErrMalformedInitData, err)
	}

	name := payload.FirstName
	if name == "" {
		name = DefaultName
	}

	return &domain.Identity{
		ID:   strconv.FormatInt(payload.ID, 10),
		Name: name,
	}, nil
}
