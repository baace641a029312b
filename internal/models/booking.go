package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "PENDING"
	BookingStatusConfirmed        BookingStatus = "CONFIRMED"
	BookingStatusReadyForCheckout BookingStatus = "READY_FOR_CHECKOUT"
	BookingStatusCheckedOut       BookingStatus = "CHECKED_OUT"
	BookingStatusInUse            BookingStatus = "IN_USE"
	BookingStatusReturned         BookingStatus = "RETURNED"
	BookingStatusCompleted        BookingStatus = "COMPLETED"
	BookingStatusCancelled        BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending              PaymentStatus = "PENDING"
	PaymentStatusPaidDeposit          PaymentStatus = "PAID_DEPOSIT"
	PaymentStatusPaidDepositCompleted PaymentStatus = "PAID_DEPOSIT_COMPLETED"
	PaymentStatusPaidFull             PaymentStatus = "PAID_FULL"
	PaymentStatusCompleted            PaymentStatus = "COMPLETED"
	PaymentStatusRefunded             PaymentStatus = "REFUNDED"
	PaymentStatusFailed               PaymentStatus = "FAILED"
)

type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "DEPOSIT"
	PaymentTypeFull    PaymentType = "FULL"
)

type OrderType string

const (
	OrderTypeOrdinary OrderType = "ORDINARY"
	OrderTypeWarranty OrderType = "WARRANTY"
)

// Booking represents one vehicle rental transaction. Monetary fields are kept
// as decimal strings so amounts round-trip through the database without
// floating-point drift.
type Booking struct {
	gorm.Model
	Code            string        `json:"code" gorm:"column:code;unique;not null"`
	RenterID        uint          `json:"renterId" gorm:"not null"`
	Renter          *User         `json:"renter,omitempty"`
	VehicleID       uint          `json:"vehicleId" gorm:"not null"`
	Vehicle         *Vehicle      `json:"vehicle,omitempty"`
	Status          BookingStatus `json:"status" gorm:"not null;default:'PENDING'"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"not null;default:'PENDING'"`
	PaymentType     PaymentType   `json:"paymentType" gorm:"not null;default:'FULL'"`
	PaymentMethod   string        `json:"paymentMethod"`
	OrderType       OrderType     `json:"orderType" gorm:"not null;default:'ORDINARY'"`
	Subtotal        string        `json:"subtotal" gorm:"type:decimal(18,2)"`
	DepositAmount   string        `json:"depositAmount" gorm:"type:decimal(18,2)"`
	TotalAmount     string        `json:"totalAmount" gorm:"type:decimal(18,2)"`
	RemainingAmount string        `json:"remainingAmount" gorm:"type:decimal(18,2)"`
	StartAt         *time.Time    `json:"startAt"`
	EndAt           *time.Time    `json:"endAt"`
	CheckedOutAt    *time.Time    `json:"checkedOutAt"`
	ReturnedAt      *time.Time    `json:"returnedAt"`
	PaymentDueAt    time.Time     `json:"paymentDueAt" gorm:"not null;index"`
	CreatedBy       string        `json:"createdBy"`
	UpdatedBy       string        `json:"updatedBy"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal reports whether the booking lifecycle has ended. A terminal
// booking must never have its payment status advanced by the webhook path.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// IsSettled reports whether payment has reached a final successful state for
// this engine.
func (b *Booking) IsSettled() bool {
	return b.PaymentStatus == PaymentStatusPaidFull || b.PaymentStatus == PaymentStatusPaidDepositCompleted
}

// SettlementState enumerates the (BookingStatus, PaymentStatus) pairs the
// payment engine can actually produce. Classifying the stored field pair
// through this type keeps unreachable combinations out of the transition
// logic.
type SettlementState int

const (
	SettlementAwaitingPayment SettlementState = iota // PENDING / PENDING
	SettlementDepositPaid                            // CONFIRMED / PAID_DEPOSIT
	SettlementDepositCompleted                       // CONFIRMED / PAID_DEPOSIT_COMPLETED
	SettlementFullyPaid                              // CONFIRMED / PAID_FULL
	SettlementCancelled                              // CANCELLED / any
	SettlementClosed                                 // COMPLETED / any
)

var ErrUnreachableState = errors.New("booking status pair is not reachable by the payment engine")

// SettlementOf classifies a booking's stored status pair.
func SettlementOf(b *Booking) (SettlementState, error) {
	switch {
	case b.Status == BookingStatusCancelled:
		return SettlementCancelled, nil
	case b.Status == BookingStatusCompleted:
		return SettlementClosed, nil
	case b.PaymentStatus == PaymentStatusPaidFull:
		return SettlementFullyPaid, nil
	case b.PaymentStatus == PaymentStatusPaidDepositCompleted:
		return SettlementDepositCompleted, nil
	case b.PaymentStatus == PaymentStatusPaidDeposit:
		return SettlementDepositPaid, nil
	case b.PaymentStatus == PaymentStatusPending:
		return SettlementAwaitingPayment, nil
	}
	return 0, ErrUnreachableState
}

// Statuses returns the stored field pair for a settlement state.
func (s SettlementState) Statuses() (BookingStatus, PaymentStatus) {
	switch s {
	case SettlementDepositPaid:
		return BookingStatusConfirmed, PaymentStatusPaidDeposit
	case SettlementDepositCompleted:
		return BookingStatusConfirmed, PaymentStatusPaidDepositCompleted
	case SettlementFullyPaid:
		return BookingStatusConfirmed, PaymentStatusPaidFull
	case SettlementCancelled:
		return BookingStatusCancelled, PaymentStatusPending
	case SettlementClosed:
		return BookingStatusCompleted, PaymentStatusCompleted
	}
	return BookingStatusPending, PaymentStatusPending
}
