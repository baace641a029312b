package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voltride/voltride-backend/internal/models"
)

// GetVehicles lists vehicles, optionally filtered by depot and status
func GetVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Depot")

		if depotID := c.Query("depotId"); depotID != "" {
			query = query.Where("depot_id = ?", depotID)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var vehicles []models.Vehicle
		if err := query.Find(&vehicles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, vehicles)
	}
}

// GetVehicle retrieves a single vehicle
func GetVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicle models.Vehicle
		if err := db.Preload("Depot").First(&vehicle, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}

		c.JSON(200, vehicle)
	}
}

type CreateVehicleInput struct {
	PlateNumber    string  `json:"plateNumber" binding:"required"`
	Make           string  `json:"make" binding:"required"`
	Model          string  `json:"model" binding:"required"`
	Color          string  `json:"color"`
	BatteryKwh     float64 `json:"batteryKwh"`
	RangeKm        int     `json:"rangeKm"`
	PricePerDay    string  `json:"pricePerDay" binding:"required"`
	DepositPercent int     `json:"depositPercent"`
	DepotID        uint    `json:"depotId" binding:"required"`
}

// CreateVehicle registers a new vehicle at a depot (staff only)
func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateVehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var depot models.Depot
		if err := db.First(&depot, input.DepotID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Depot not found"})
			return
		}

		vehicle := models.Vehicle{
			PlateNumber:    input.PlateNumber,
			Make:           input.Make,
			ModelName:      input.Model,
			Color:          input.Color,
			BatteryKwh:     input.BatteryKwh,
			RangeKm:        input.RangeKm,
			PricePerDay:    input.PricePerDay,
			DepositPercent: input.DepositPercent,
			Status:         models.VehicleStatusAvailable,
			DepotID:        input.DepotID,
		}
		if vehicle.DepositPercent == 0 {
			vehicle.DepositPercent = 30
		}

		if err := db.Create(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create vehicle"})
			return
		}

		c.JSON(201, vehicle)
	}
}

// GetDepots lists active depots
func GetDepots(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var depots []models.Depot
		if err := db.Where("is_active = ?", true).Find(&depots).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch depots"})
			return
		}

		c.JSON(200, depots)
	}
}

type CreateDepotInput struct {
	Name    string  `json:"name" binding:"required"`
	Address string  `json:"address" binding:"required"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// CreateDepot registers a new depot (staff only)
func CreateDepot(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateDepotInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		depot := models.Depot{
			Name:     input.Name,
			Address:  input.Address,
			City:     input.City,
			Lat:      input.Lat,
			Lng:      input.Lng,
			IsActive: true,
		}

		if err := db.Create(&depot).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create depot"})
			return
		}

		c.JSON(201, depot)
	}
}
