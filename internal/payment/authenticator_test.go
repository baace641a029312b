package payment_test

import (
	"testing"

	"github.com/voltride/voltride-backend/internal/payment"
)

func TestAuthenticate(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"apikey prefix", "Apikey SECRET", true},
		{"camel case prefix", "ApiKey SECRET", true},
		{"bearer prefix", "Bearer SECRET", true},
		{"dashed prefix", "API-KEY SECRET", true},
		{"bare key", "SECRET", true},
		{"case insensitive", "apikey secret", true},
		{"uppercase bearer", "BEARER SECRET", true},
		{"surrounding whitespace", "  Apikey SECRET  ", true},
		{"wrong key", "Apikey WRONG", false},
		{"wrong bare key", "WRONG", false},
		{"empty header", "", false},
		{"prefix only", "Apikey", false},
		{"unknown prefix", "Token SECRET", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.Authenticate(tt.header); got != tt.want {
				t.Errorf("Authenticate(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestAuthenticateKeyIsNotPrefixMatched(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	if auth.Authenticate("Apikey SECRETX") {
		t.Error("a longer key sharing the configured prefix must be rejected")
	}
	if auth.Authenticate("Apikey SECRE") {
		t.Error("a truncated key must be rejected")
	}
}
