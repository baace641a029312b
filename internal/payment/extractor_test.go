package payment_test

import (
	"testing"

	"github.com/voltride/voltride-backend/internal/payment"
)

func TestExtractBookingCode(t *testing.T) {
	tests := []struct {
		name string
		memo string
		want string
		ok   bool
	}{
		{"plain transfer memo", "Chuyen tien ORD1234567 thanh toan", "ORD1234567", true},
		{"code at start", "ORD1234567", "ORD1234567", true},
		{"code at end", "thanh toan ORD9999999", "ORD9999999", true},
		{"no separator around code", "MBVCBORD1234567.CT tu khach", "ORD1234567", true},
		{"eight digit run is not a code", "ORD12345678", "", false},
		{"long run then valid code", "ORD12345678 ORD7654321", "ORD7654321", true},
		{"first of two codes wins", "ORD1111111 roi ORD2222222", "ORD1111111", true},
		{"six digits too short", "ORD123456", "", false},
		{"no prefix", "chuyen khoan 1234567", "", false},
		{"lowercase prefix ignored", "ord1234567", "", false},
		{"empty memo", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := payment.ExtractBookingCode(tt.memo)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractBookingCode(%q) = (%q, %v), want (%q, %v)", tt.memo, got, ok, tt.want, tt.ok)
			}
		})
	}
}
