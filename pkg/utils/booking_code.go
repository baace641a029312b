package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	bookingCodePrefix = "ORD"
	bookingCodeDigits = 7
)

// GenerateBookingCode produces a new booking code: ORD followed by 7 random
// digits. The code doubles as the bank-transfer correlation key, so it must
// not be guessable.
func GenerateBookingCode() (string, error) {
	digits := make([]byte, bookingCodeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return bookingCodePrefix + string(digits), nil
}
