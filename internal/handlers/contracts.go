package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/services"
)

// GetContract retrieves the contract for a booking
func GetContract(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		userType := c.GetString("userType")

		var contract models.Contract
		if err := db.Preload("Booking").
			Where("booking_id = ?", c.Param("id")).
			First(&contract).Error; err != nil {
			c.JSON(404, gin.H{"error": "Contract not found"})
			return
		}

		if contract.Booking.RenterID != userId && userType != "staff" {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		response := gin.H{
			"id":        contract.ID,
			"bookingId": contract.BookingID,
			"status":    contract.Status,
			"signedAt":  contract.SignedAt,
		}
		if contract.DocumentKey != "" {
			response["documentUrl"] = services.DocumentURL(contract.DocumentKey)
		}

		c.JSON(200, response)
	}
}

// UploadContractDocument stores the signed contract document for a booking
// (staff only)
func UploadContractDocument(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		file, err := c.FormFile("document")
		if err != nil {
			c.JSON(400, gin.H{"error": "Document file required"})
			return
		}

		key, err := services.UploadDocument(file, "contracts")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to store document"})
			return
		}

		now := time.Now()
		contract := models.Contract{
			BookingID:   booking.ID,
			Status:      models.ContractStatusSigned,
			DocumentKey: key,
			SignedAt:    &now,
		}

		// One contract per booking; re-uploads replace the document.
		var existing models.Contract
		if err := db.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
			existing.Status = models.ContractStatusSigned
			existing.DocumentKey = key
			existing.SignedAt = &now
			if err := db.Save(&existing).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update contract"})
				return
			}
			c.JSON(200, existing)
			return
		}

		if err := db.Create(&contract).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create contract"})
			return
		}

		c.JSON(201, contract)
	}
}
