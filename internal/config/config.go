package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Payment holds the settlement-gateway settings consumed by the payment
// engine. It is loaded once at startup and passed by value into the engine
// constructors; nothing mutates it afterwards.
type Payment struct {
	GatewayAPIKey  string        `envconfig:"PAYMENT_GATEWAY_API_KEY" required:"true"`
	GatewayBaseURI string        `envconfig:"PAYMENT_GATEWAY_BASE_URI" default:"https://img.vietqr.io/image"`
	AccountNumber  string        `envconfig:"PAYMENT_ACCOUNT_NUMBER" required:"true"`
	BankCode       string        `envconfig:"PAYMENT_BANK_CODE" required:"true"`
	QRTemplate     string        `envconfig:"PAYMENT_QR_TEMPLATE" default:"compact2"`
	SweepInterval  time.Duration `envconfig:"PAYMENT_SWEEP_INTERVAL" default:"5m"`
	SweepBackoff   time.Duration `envconfig:"PAYMENT_SWEEP_BACKOFF" default:"30s"`
	GraceWindow    time.Duration `envconfig:"PAYMENT_GRACE_WINDOW" default:"30m"`
}

// App is the full configuration surface of the service.
type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	Payment  Payment
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
