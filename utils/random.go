package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const randomAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString returns n characters from an unambiguous upper-case alphabet.
func GenerateRandomString(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable")
		}
		out[i] = randomAlphabet[idx.Int64()]
	}
	return string(out)
}

// InvoiceNumber is the year of issue plus a random suffix, e.g. INV-2026-7KQ2MX.
func InvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%d-%s", at.Year(), GenerateRandomString(6))
}
