package models

import (
	"gorm.io/gorm"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusRented      VehicleStatus = "RENTED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
)

// Vehicle represents an electric vehicle available for rental
type Vehicle struct {
	gorm.Model
	PlateNumber    string        `json:"plateNumber" gorm:"unique;not null"`
	Make           string        `json:"make" gorm:"not null"`
	ModelName      string        `json:"model" gorm:"column:model_name;not null"`
	Color          string        `json:"color"`
	BatteryKwh     float64       `json:"batteryKwh"`
	RangeKm        int           `json:"rangeKm"`
	PricePerDay    string        `json:"pricePerDay" gorm:"type:decimal(18,2);not null"`
	DepositPercent int           `json:"depositPercent" gorm:"default:30"`
	Status         VehicleStatus `json:"status" gorm:"not null;default:'AVAILABLE'"`
	DepotID        uint          `json:"depotId" gorm:"not null"`
	Depot          *Depot        `json:"depot,omitempty"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}

// Depot represents a pickup/return location for vehicles
type Depot struct {
	gorm.Model
	Name     string  `json:"name" gorm:"unique;not null"`
	Address  string  `json:"address" gorm:"not null"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	IsActive bool    `json:"isActive" gorm:"not null;default:true"`
}

// TableName specifies the table name
func (Depot) TableName() string {
	return "depots"
}
