package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

// verifyTelegramAuth checks a Telegram Login Widget payload: HMAC-SHA256 of
// the sorted data-check string keyed with sha256(bot_token), then auth_date
// freshness. maxAge <= 0 disables the freshness check.
func verifyTelegramAuth(req *gamedto.TelegramAuthRequest, botToken string, maxAge time.Duration, now time.Time) error {
	if strings.TrimSpace(req.Hash) == "" {
		return ErrHashMissing
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataCheckString(req)))
	want := hex.EncodeToString(mac.Sum(nil))

	got := strings.ToLower(strings.TrimSpace(req.Hash))
	if !hmac.Equal([]byte(want), []byte(got)) {
		return ErrBadSignature
	}

	if maxAge > 0 {
		issued := time.Unix(req.AuthDate, 0)
		if now.Sub(issued) > maxAge {
			return ErrStaleAuth
		}
	}
	return nil
}

// dataCheckString joins all present fields except hash as k=v lines, sorted
// by key, exactly as the widget documentation prescribes.
func dataCheckString(req *gamedto.TelegramAuthRequest) string {
	pairs := []string{
		fmt.Sprintf("auth_date=%d", req.AuthDate),
		fmt.Sprintf("id=%d", req.ID),
	}
	if req.FirstName != "" {
		pairs = append(pairs, "first_name="+req.FirstName)
	}
	if req.LastName != "" {
		pairs = append(pairs, "last_name="+req.LastName)
	}
	if req.PhotoURL != "" {
		pairs = append(pairs, "photo_url="+req.PhotoURL)
	}
	if req.Username != "" {
		pairs = append(pairs, "username="+req.Username)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// displayName mirrors the widget fallback chain: full name, then username,
// then a generic label.
func displayName(req *gamedto.TelegramAuthRequest) string {
	full := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	if full != "" {
		return full
	}
	if strings.TrimSpace(req.Username) != "" {
		return strings.TrimSpace(req.Username)
	}
	return "User"
}
