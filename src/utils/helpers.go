package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"quickstay/src/config"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of the
// calendar day. RFC3339 input keeps the day in its own offset; the time of day
// is dropped, so stays are whole nights.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(config.DATE_PARSE_FORMAT, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Nights rounds a partial day up. Zero or negative means an empty stay.
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	return int(math.Ceil(hours / 24))
}

func TotalPrice(pricePerNight float64, nights int) float64 {
	return pricePerNight * float64(nights)
}

// ToMinorUnits converts a major-unit amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// UsernameFromEmail returns the local part of email, or fallback when there is none.
func UsernameFromEmail(email, fallback string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return fallback
	}
	return local
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(config.DATE_PARSE_FORMAT)
}
