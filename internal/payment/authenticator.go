package payment

import "strings"

// Authenticator validates that an inbound notification carries the shared
// gateway API key. The provider is not consistent about how it prefixes the
// key between deliveries, so every encoding it has been observed to send is
// accepted. Do not narrow this list; it tracks real gateway behavior, not a
// preference.
type Authenticator struct {
	accepted []string
}

func NewAuthenticator(apiKey string) *Authenticator {
	return &Authenticator{
		accepted: []string{
			"Apikey " + apiKey,
			"ApiKey " + apiKey,
			"Bearer " + apiKey,
			"API-KEY " + apiKey,
			apiKey,
		},
	}
}

// Authenticate reports whether the raw authorization header value matches any
// accepted encoding of the configured key. Comparison is case-insensitive.
// Empty or missing headers are rejected; it never panics.
func (a *Authenticator) Authenticate(headerValue string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return false
	}
	for _, candidate := range a.accepted {
		if strings.EqualFold(headerValue, candidate) {
			return true
		}
	}
	return false
}
