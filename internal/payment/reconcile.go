package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/voltride/voltride-backend/internal/models"
)

// WebhookActor is the system identity stamped on every booking mutation made
// by the webhook reconciliation path.
const WebhookActor = "payment-webhook"

// maxReconcileAttempts bounds the re-read/retry loop when a conditional
// write loses to a concurrent writer (another delivery or the expiry sweep).
const maxReconcileAttempts = 3

// ErrConflict is returned by a BookingStore when a conditional update finds
// the booking's status no longer matches what the caller read.
var ErrConflict = errors.New("booking was modified concurrently")

// BookingStore is the persistence surface the reconciliation engine needs.
// Lookups return (nil, nil) when no booking matches. The update is
// conditional on the payment status the caller previously read, so exactly
// one of two racing writers wins.
type BookingStore interface {
	FindByCode(ctx context.Context, code string) (*models.Booking, error)
	UpdateStatusIfPaymentStatus(ctx context.Context, id uint, expected models.PaymentStatus, update StatusUpdate) error
}

// StatusUpdate is the result of one applied transition.
type StatusUpdate struct {
	Status          models.BookingStatus
	PaymentStatus   models.PaymentStatus
	RemainingAmount string // empty means leave unchanged
	UpdatedBy       string
}

// Event is the normalized result of one inbound webhook delivery. It lives
// for a single reconciliation call; the durable transaction ledger is owned
// elsewhere.
type Event struct {
	GatewayID      string
	ReferenceCode  string
	TransferAmount float64
	Content        string
	ReceivedAt     time.Time
}

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeRejected
	OutcomeNoop
)

type RejectReason string

const (
	ReasonNotFound       RejectReason = "NOT_FOUND"
	ReasonAlreadySettled RejectReason = "ALREADY_SETTLED"
	ReasonConflict       RejectReason = "CONFLICT"
)

// Result reports what the engine decided for one event.
type Result struct {
	Outcome Outcome
	Reason  RejectReason
	Booking *models.Booking
}

// Reconciler advances a booking's settlement state in response to verified
// payment events. It computes each decision from an immutable snapshot and
// submits a single conditional write; it holds no locks and performs no
// retries beyond the bounded conflict loop.
type Reconciler struct {
	store  BookingStore
	logger *log.Logger
}

func NewReconciler(store BookingStore, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile matches one payment event against the booking identified by
// code. A non-nil error means the store failed and the caller should report
// the delivery as retryable; every business decision comes back in Result.
func (r *Reconciler) Reconcile(ctx context.Context, code string, ev Event) (*Result, error) {
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		booking, err := r.store.FindByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("load booking %s: %w", code, err)
		}
		if booking == nil {
			return &Result{Outcome: OutcomeRejected, Reason: ReasonNotFound}, nil
		}
		if booking.IsSettled() {
			// Duplicate delivery for a settled booking; success-shaped so
			// the gateway stops redelivering.
			return &Result{Outcome: OutcomeRejected, Reason: ReasonAlreadySettled, Booking: booking}, nil
		}
		if booking.IsTerminal() {
			r.logger.Printf("[reconcile] ignoring payment for terminal booking %s (status=%s, txn=%s)",
				booking.Code, booking.Status, ev.GatewayID)
			return &Result{Outcome: OutcomeNoop, Booking: booking}, nil
		}

		update, ok := r.nextUpdate(booking, ev)
		if !ok {
			return &Result{Outcome: OutcomeNoop, Booking: booking}, nil
		}

		err = r.store.UpdateStatusIfPaymentStatus(ctx, booking.ID, booking.PaymentStatus, update)
		if errors.Is(err, ErrConflict) {
			r.logger.Printf("[reconcile] conflict on booking %s (attempt %d/%d), re-reading",
				booking.Code, attempt, maxReconcileAttempts)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("persist booking %s: %w", code, err)
		}

		booking.Status = update.Status
		booking.PaymentStatus = update.PaymentStatus
		if update.RemainingAmount != "" {
			booking.RemainingAmount = update.RemainingAmount
		}
		booking.UpdatedBy = update.UpdatedBy
		return &Result{Outcome: OutcomeApplied, Booking: booking}, nil
	}
	return &Result{Outcome: OutcomeRejected, Reason: ReasonConflict}, nil
}

// nextUpdate decides the next settlement state for a pre-settlement,
// non-terminal booking. Events that fit no transition are ignored rather
// than failed, since the money has already moved.
func (r *Reconciler) nextUpdate(booking *models.Booking, ev Event) (StatusUpdate, bool) {
	state, err := models.SettlementOf(booking)
	if err != nil {
		r.logger.Printf("[reconcile] booking %s in unexpected state %s/%s, ignoring txn %s",
			booking.Code, booking.Status, booking.PaymentStatus, ev.GatewayID)
		return StatusUpdate{}, false
	}

	r.observeAmount(booking, ev)

	var next models.SettlementState
	remaining := ""

	switch {
	case booking.PaymentType == models.PaymentTypeDeposit && state == models.SettlementAwaitingPayment:
		next = models.SettlementDepositPaid
	case booking.PaymentType == models.PaymentTypeDeposit && state == models.SettlementDepositPaid:
		next = models.SettlementDepositCompleted
		remaining = "0.00"
	case booking.PaymentType == models.PaymentTypeFull:
		next = models.SettlementFullyPaid
		if booking.OrderType != models.OrderTypeWarranty {
			// Warranty bookings stop at confirm; ordinary full payments
			// also clear the outstanding balance.
			remaining = "0.00"
		}
	default:
		return StatusUpdate{}, false
	}

	status, paymentStatus := next.Statuses()
	return StatusUpdate{
		Status:          status,
		PaymentStatus:   paymentStatus,
		RemainingAmount: remaining,
		UpdatedBy:       WebhookActor,
	}, true
}

// observeAmount logs transfers that fall short of the amount due. The
// transition is still applied: the upstream system never enforced the
// amount, and rejecting here would strand real money against the booking.
func (r *Reconciler) observeAmount(booking *models.Booking, ev Event) {
	expected := RequestAmount(booking)
	if booking.PaymentStatus == models.PaymentStatusPaidDeposit {
		// Second deposit leg: the balance is what is due, not the deposit.
		if remaining, ok := parseDecimal(booking.RemainingAmount); ok {
			expected = int64(math.Round(remaining))
		}
	}
	if expected > 0 && ev.TransferAmount < float64(expected) {
		r.logger.Printf("[reconcile] booking %s transfer %.0f below expected %d (txn=%s)",
			booking.Code, ev.TransferAmount, expected, ev.GatewayID)
	}
}
