package handlers

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voltride/voltride-backend/internal/config"
	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/payment"
	"github.com/voltride/voltride-backend/internal/services"
	"github.com/voltride/voltride-backend/pkg/utils"
)

type CreateBookingInput struct {
	VehicleID   uint      `json:"vehicleId" binding:"required"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	EndAt       time.Time `json:"endAt" binding:"required"`
	PaymentType string    `json:"paymentType" binding:"required,oneof=DEPOSIT FULL"`
	OrderType   string    `json:"orderType" binding:"omitempty,oneof=ORDINARY WARRANTY"`
}

// CreateBooking creates a new booking in PENDING state with a fresh booking
// code and a payment deadline derived from the configured grace window.
func CreateBooking(db *gorm.DB, cfg config.Payment) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !input.EndAt.After(input.StartAt) {
			c.JSON(400, gin.H{"error": "endAt must be after startAt"})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, input.VehicleID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.Status != models.VehicleStatusAvailable {
			c.JSON(400, gin.H{"error": "Vehicle is not available"})
			return
		}

		code, err := utils.GenerateBookingCode()
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate booking code"})
			return
		}

		subtotal, deposit, remaining := bookingAmounts(&vehicle, input.StartAt, input.EndAt, input.PaymentType)

		orderType := models.OrderType(input.OrderType)
		if orderType == "" {
			orderType = models.OrderTypeOrdinary
		}

		actor := fmt.Sprintf("user:%d", userId)
		booking := models.Booking{
			Code:            code,
			RenterID:        userId,
			VehicleID:       input.VehicleID,
			Status:          models.BookingStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentType:     models.PaymentType(input.PaymentType),
			OrderType:       orderType,
			Subtotal:        subtotal,
			DepositAmount:   deposit,
			TotalAmount:     subtotal,
			RemainingAmount: remaining,
			StartAt:         &input.StartAt,
			EndAt:           &input.EndAt,
			PaymentDueAt:    time.Now().Add(cfg.GraceWindow),
			CreatedBy:       actor,
			UpdatedBy:       actor,
		}

		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create booking"})
			return
		}

		c.JSON(201, booking)
	}
}

// bookingAmounts prices a rental as decimal strings: full rental subtotal,
// the deposit slice for deposit bookings, and what remains after the first
// payment leg.
func bookingAmounts(vehicle *models.Vehicle, start, end time.Time, paymentType string) (subtotal, deposit, remaining string) {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}

	pricePerDay, err := strconv.ParseFloat(vehicle.PricePerDay, 64)
	if err != nil {
		pricePerDay = 0
	}
	total := pricePerDay * float64(days)

	subtotal = formatAmount(total)
	if paymentType == string(models.PaymentTypeDeposit) {
		depositValue := total * float64(vehicle.DepositPercent) / 100
		deposit = formatAmount(depositValue)
		remaining = formatAmount(total - depositValue)
	} else {
		deposit = formatAmount(0)
		remaining = subtotal
	}
	return subtotal, deposit, remaining
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

// GetBooking retrieves a single booking for its renter (or staff)
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		userType := c.GetString("userType")

		var booking models.Booking
		if err := db.Preload("Vehicle").Preload("Vehicle.Depot").First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.RenterID != userId && userType != "staff" {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		c.JSON(200, booking)
	}
}

// GetMyBookings lists all bookings for the authenticated renter
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var bookings []models.Booking
		if err := db.Where("renter_id = ?", userId).
			Preload("Vehicle").
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// CheckoutBooking produces the payment request (QR URL + amount) for a
// pending booking. Requests are cached for the payment window so repeated
// checkout calls return the same descriptor.
func CheckoutBooking(db *gorm.DB, gateway *payment.GatewayClient, cfg config.Payment) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.RenterID != userId {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}
		if booking.IsTerminal() {
			c.JSON(400, gin.H{"error": "Booking is no longer payable"})
			return
		}
		if booking.IsSettled() {
			c.JSON(400, gin.H{"error": "Booking is already paid"})
			return
		}

		var cached payment.PaymentRequest
		if ok, err := services.GetCachedPaymentRequest(c.Request.Context(), booking.Code, &cached); err == nil && ok {
			c.JSON(200, cached)
			return
		}

		request, err := gateway.CreatePaymentRequest(&booking)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to create payment request"})
			return
		}

		ttl := time.Until(booking.PaymentDueAt)
		if ttl > 0 {
			// Cache failures only cost a regenerated QR on the next call.
			_ = services.CachePaymentRequest(c.Request.Context(), booking.Code, request, ttl)
		}

		c.JSON(200, request)
	}
}

// CancelBooking lets a renter abandon a booking that has not settled yet.
// The same conditional-update guard used by the expiry sweep applies, so a
// settlement racing this call wins.
func CancelBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.RenterID != userId {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		res := db.Model(&models.Booking{}).
			Where("id = ? AND status = ? AND payment_status = ?",
				booking.ID, models.BookingStatusPending, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":     models.BookingStatusCancelled,
				"updated_by": fmt.Sprintf("user:%d", userId),
			})
		if res.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(409, gin.H{"error": "Booking can no longer be cancelled"})
			return
		}

		c.JSON(200, gin.H{"message": "Booking cancelled"})
	}
}
