package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/payment"
)

// BookingStore owns durable booking state. Status updates are conditional on
// the status pair the caller read, so concurrent writers (webhook vs expiry
// sweep) serialize per booking: one wins, the loser sees a conflict.
type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

// FindByCode looks a booking up by its human-readable ORD code. Returns
// (nil, nil) when no booking matches.
func (s *BookingStore) FindByCode(ctx context.Context, code string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByID looks a booking up by primary key. Returns (nil, nil) when no
// booking matches.
func (s *BookingStore) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatusIfPaymentStatus applies a settlement transition only if the
// booking's payment status still matches what the caller read and the
// booking has not reached a terminal lifecycle status in the meantime.
// Returns payment.ErrConflict when another writer got there first.
func (s *BookingStore) UpdateStatusIfPaymentStatus(ctx context.Context, id uint, expected models.PaymentStatus, update payment.StatusUpdate) error {
	fields := map[string]interface{}{
		"status":         update.Status,
		"payment_status": update.PaymentStatus,
		"updated_by":     update.UpdatedBy,
	}
	if update.RemainingAmount != "" {
		fields["remaining_amount"] = update.RemainingAmount
	}

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_status = ? AND status NOT IN ?",
			id, expected,
			[]models.BookingStatus{models.BookingStatusCancelled, models.BookingStatusCompleted}).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payment.ErrConflict
	}
	return nil
}

// FindExpiredPending returns bookings still awaiting payment whose due
// deadline passed before asOf.
func (s *BookingStore) FindExpiredPending(ctx context.Context, asOf time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_status IN ? AND payment_due_at < ?",
			models.BookingStatusPending,
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed},
			asOf).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CancelIfUnpaid transitions a booking to CANCELLED only while it is still
// pre-confirmation and unpaid. A webhook settlement that lands first makes
// the guard fail and the cancellation is dropped.
func (s *BookingStore) CancelIfUnpaid(ctx context.Context, id uint, actor string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ? AND payment_status IN ?",
			id,
			models.BookingStatusPending,
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed}).
		Updates(map[string]interface{}{
			"status":     models.BookingStatusCancelled,
			"updated_by": actor,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
