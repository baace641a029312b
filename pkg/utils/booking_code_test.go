package utils

import (
	"regexp"
	"testing"
)

var bookingCodeRe = regexp.MustCompile(`^ORD\d{7}$`)

func TestGenerateBookingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateBookingCode()
		if err != nil {
			t.Fatalf("GenerateBookingCode: %v", err)
		}
		if !bookingCodeRe.MatchString(code) {
			t.Fatalf("code %q does not match ORD + 7 digits", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes never varied across generations")
	}
}
