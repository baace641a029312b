package models

import (
	"time"

	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractStatusDraft  ContractStatus = "DRAFT"
	ContractStatusSigned ContractStatus = "SIGNED"
	ContractStatusVoided ContractStatus = "VOIDED"
)

// Contract represents the rental agreement for a booking. DocumentKey points
// at the signed copy in object storage.
type Contract struct {
	gorm.Model
	BookingID   uint           `json:"bookingId" gorm:"not null;unique"`
	Booking     *Booking       `json:"booking,omitempty"`
	Status      ContractStatus `json:"status" gorm:"not null;default:'DRAFT'"`
	DocumentKey string         `json:"documentKey"`
	SignedAt    *time.Time     `json:"signedAt"`
}

// TableName specifies the table name
func (Contract) TableName() string {
	return "contracts"
}
