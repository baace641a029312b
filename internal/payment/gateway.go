package payment

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"

	"github.com/voltride/voltride-backend/internal/config"
	"github.com/voltride/voltride-backend/internal/models"
)

const (
	paymentCodePrefix = "EV"
	paymentCodeDigits = 7

	// Share of the total charged up front when a deposit booking has no
	// usable stored deposit amount.
	depositFallbackRate = 0.30
)

// PaymentRequest describes an outbound payment request for a booking: a
// QR-image URL the renter scans plus the amount it encodes.
type PaymentRequest struct {
	RequestURL  string  `json:"requestUrl"`
	Amount      int64   `json:"amount"`
	PaymentCode string  `json:"paymentCode"`
}

// GatewayClient builds payment request descriptors against the configured
// settlement account. It is purely computational and holds no state beyond
// the immutable configuration it was constructed with.
type GatewayClient struct {
	cfg config.Payment
}

func NewGatewayClient(cfg config.Payment) *GatewayClient {
	return &GatewayClient{cfg: cfg}
}

// CreatePaymentRequest computes the amount due for the booking's payment
// intent and wraps it in a QR request URL. The transfer description carries
// a fresh payment code followed by the booking code; only the booking code
// is used for webhook correlation.
func (g *GatewayClient) CreatePaymentRequest(booking *models.Booking) (*PaymentRequest, error) {
	amount := RequestAmount(booking)

	code, err := generatePaymentCode()
	if err != nil {
		return nil, fmt.Errorf("generate payment code: %w", err)
	}

	q := url.Values{}
	q.Set("acc", g.cfg.AccountNumber)
	q.Set("bank", g.cfg.BankCode)
	q.Set("amount", strconv.FormatInt(amount, 10))
	q.Set("des", code+" "+booking.Code)
	q.Set("template", g.cfg.QRTemplate)

	return &PaymentRequest{
		RequestURL:  g.cfg.GatewayBaseURI + "?" + q.Encode(),
		Amount:      amount,
		PaymentCode: code,
	}, nil
}

// RequestAmount resolves the integer amount to request for a booking.
// Deposit bookings use the stored deposit amount when it parses as a
// decimal, falling back to 30% of the total; full bookings use the stored
// total, falling back to zero.
func RequestAmount(booking *models.Booking) int64 {
	total, totalOK := parseDecimal(booking.TotalAmount)

	if booking.PaymentType == models.PaymentTypeDeposit {
		if deposit, ok := parseDecimal(booking.DepositAmount); ok {
			return int64(math.Round(deposit))
		}
		if totalOK {
			return int64(math.Round(total * depositFallbackRate))
		}
		return 0
	}

	if totalOK {
		return int64(math.Round(total))
	}
	return 0
}

func parseDecimal(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// generatePaymentCode produces the short per-request code embedded in the
// transfer description. The code must not be guessable.
func generatePaymentCode() (string, error) {
	digits := make([]byte, paymentCodeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return paymentCodePrefix + string(digits), nil
}
