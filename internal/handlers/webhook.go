package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/payment"
	"github.com/voltride/voltride-backend/internal/services"
)

// WebhookEvent is the gateway's delivery payload. Field names follow the
// provider's wire format.
type WebhookEvent struct {
	ID              int64   `json:"id"`
	Gateway         string  `json:"gateway"`
	TransactionDate string  `json:"transactionDate"`
	AccountNumber   string  `json:"accountNumber"`
	Code            string  `json:"code"`
	Content         string  `json:"content"`
	TransferType    string  `json:"transferType"`
	TransferAmount  float64 `json:"transferAmount"`
	Accumulated     float64 `json:"accumulated"`
	SubAccount      string  `json:"subAccount"`
	ReferenceCode   string  `json:"referenceCode"`
	Description     string  `json:"description"`
}

// Deduper remembers gateway transaction ids across deliveries.
type Deduper interface {
	FirstDelivery(ctx context.Context, gatewayID string) (bool, error)
}

// Reconciler matches a verified payment event to a booking.
type Reconciler interface {
	Reconcile(ctx context.Context, code string, ev payment.Event) (*payment.Result, error)
}

// PaymentWebhook receives transfer notifications from the payment gateway.
// Status codes drive the gateway's redelivery: 2xx stops it, 5xx retries it,
// 4xx marks the delivery permanently failed.
func PaymentWebhook(auth *payment.Authenticator, deduper Deduper, rec Reconciler, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Authenticate(c.GetHeader("Authorization")) {
			c.JSON(401, gin.H{"error": "Invalid API key"})
			return
		}

		var event WebhookEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		code, ok := payment.ExtractBookingCode(event.Content)
		if !ok {
			log.Printf("[webhook] no booking code in memo (txn=%d, ref=%s)", event.ID, event.ReferenceCode)
			c.JSON(400, gin.H{"error": "No booking code in transfer content"})
			return
		}

		ctx := c.Request.Context()
		gatewayID := event.ReferenceCode
		if gatewayID == "" {
			gatewayID = event.Code
		}

		if deduper != nil && gatewayID != "" {
			first, err := deduper.FirstDelivery(ctx, gatewayID)
			if err != nil {
				// Fail open: the reconciler's ALREADY_SETTLED check keeps
				// duplicates harmless when the cache is unavailable.
				log.Printf("[webhook] dedup check failed for txn %s: %v", gatewayID, err)
			} else if !first {
				c.JSON(200, gin.H{"message": "Duplicate delivery ignored"})
				return
			}
		}

		result, err := rec.Reconcile(ctx, code, payment.Event{
			GatewayID:      gatewayID,
			ReferenceCode:  event.ReferenceCode,
			TransferAmount: event.TransferAmount,
			Content:        event.Content,
			ReceivedAt:     time.Now(),
		})
		if err != nil {
			// Store failure: answer 5xx so the gateway redelivers.
			log.Printf("[webhook] reconcile %s failed: %v", code, err)
			c.JSON(500, gin.H{"error": "Failed to process payment event"})
			return
		}

		switch result.Outcome {
		case payment.OutcomeApplied:
			notifySettlement(hub, result.Booking, event.TransferAmount)
			c.JSON(200, gin.H{
				"message":       "Payment recorded",
				"bookingCode":   result.Booking.Code,
				"status":        result.Booking.Status,
				"paymentStatus": result.Booking.PaymentStatus,
			})
		case payment.OutcomeNoop:
			c.JSON(200, gin.H{"message": "Event ignored"})
		default:
			switch result.Reason {
			case payment.ReasonNotFound:
				c.JSON(404, gin.H{"error": "Booking not found"})
			case payment.ReasonAlreadySettled:
				c.JSON(400, gin.H{"error": "Booking is already paid"})
			default:
				// Conflict after bounded retries; let the gateway redeliver
				// against the settled state.
				c.JSON(500, gin.H{"error": "Concurrent update, retry delivery"})
			}
		}
	}
}

func notifySettlement(hub *services.Hub, booking *models.Booking, amount float64) {
	if booking.IsSettled() && services.RedisClient != nil {
		_ = services.DropCachedPaymentRequest(context.Background(), booking.Code)
	}

	if hub == nil {
		return
	}

	hub.SendPaymentReceived(booking.RenterID, services.PaymentReceived{
		BookingID: booking.ID,
		Code:      booking.Code,
		Amount:    amount,
	})
	if booking.Status == models.BookingStatusConfirmed {
		hub.SendBookingConfirmed(booking.RenterID, services.BookingConfirmed{
			BookingID:     booking.ID,
			Code:          booking.Code,
			PaymentStatus: string(booking.PaymentStatus),
		})
	}
}
