package payment

import "regexp"

// bookingCodePattern matches a booking-code candidate: the literal ORD prefix
// followed by a run of digits. Candidates are filtered to exactly 7 digits
// afterwards so that a longer merchant code like ORD12345678 is skipped
// instead of being truncated to a false match.
var bookingCodePattern = regexp.MustCompile(`ORD\d+`)

const bookingCodeLen = len("ORD") + 7

// ExtractBookingCode scans a free-text transfer memo for the first booking
// code (ORD + exactly 7 digits). This is the sole correlation mechanism
// between an anonymous bank transfer and a booking, so the scan is strictly
// deterministic: first well-formed token wins.
func ExtractBookingCode(memo string) (string, bool) {
	for _, candidate := range bookingCodePattern.FindAllString(memo, -1) {
		if len(candidate) == bookingCodeLen {
			return candidate, true
		}
	}
	return "", false
}
