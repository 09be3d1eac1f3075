package main

import (
	"crs/src/common"
	"crs/src/db"
	"crs/src/lib"
	"crs/src/models"
	"crs/src/types"
	"crs/src/utils"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

var coordinator *common.ReservationCoordinator

func getCoordinator() *common.ReservationCoordinator {
	if coordinator == nil {
		coordinator = common.NewReservationCoordinator(
			common.NewStore(db.GetDb()),
			lib.NewRazorpayGateway(),
		)
	}
	return coordinator
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			bookings, err := utils.GetOwnBookings(userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID, UserID: userId}).
				Preload("Rentable.Car.Manufacturer").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/order", func(ctx *gin.Context) {
			var body types.CreateBookingOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pickUpDate, err := utils.ParseRentalDate(body.PickUpDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dropOffDate, err := utils.ParseRentalDate(body.DropOffDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			// Price comes from the stored rate, never from the client.
			db := db.GetDb()
			var rentable models.Rentable
			if err := db.
				Model(&models.Rentable{}).
				Where(&models.Rentable{ID: body.RentableID}).
				First(&rentable).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrRentableNotFound.Error()})
				return
			}
			totalPrice := utils.DeriveTotalPrice(rentable.PricePerDay, pickUpDate, dropOffDate)

			userId := ctx.GetUint("id")
			order, err := getCoordinator().OpenReservation(ctx, common.OpenReservationInput{
				RentableID:      body.RentableID,
				UserID:          userId,
				PickUpDate:      pickUpDate,
				DropOffDate:     dropOffDate,
				PickUpTime:      body.PickUpTime,
				DropOffTime:     body.DropOffTime,
				PickUpLocation:  body.PickUpLocation,
				DropOffLocation: body.DropOffLocation,
				Address:         body.Address,
				PhoneNumber:     body.PhoneNumber,
				TotalPrice:      totalPrice,
			})
			if err != nil {
				log.Printf("Error opening reservation for rentable [%d]: %s\n", body.RentableID, err.Error())
				ctx.JSON(reservationErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		POST("/bookings/verify", func(ctx *gin.Context) {
			var body types.VerifyPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := getCoordinator().ConfirmReservation(ctx, types.PaymentProof{
				OrderID:   body.OrderID,
				PaymentID: body.PaymentID,
				Signature: body.Signature,
			})
			if err != nil {
				log.Printf("Error confirming order [%s]: %s\n", body.OrderID, err.Error())
				ctx.JSON(reservationErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}

func adminBookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			var filters types.BookingQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bookings, err := utils.QueryBookings(&filters)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		PUT("/bookings/:id/delivery", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateDeliveryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			deliveryDate, err := utils.ParseRentalDate(body.DeliveryDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: params.ID, Status: types.BOOKING_BOOKED}).
					First(&booking).
					Error; err != nil {
					return common.ErrBookingNotFound
				}
				return tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: params.ID}).
					Updates(&models.Booking{DeliveryDate: &deliveryDate}).
					Error
			}); err != nil {
				ctx.JSON(reservationErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

// webhookHandlers carries the gateway's server-to-server payment notification.
// It drives the same confirmation path as the client verify endpoint, so a
// dropped client response still promotes the booking.
func webhookHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/webhook/razorpay", func(ctx *gin.Context) {
			payload, err := io.ReadAll(ctx.Request.Body)
			if err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			signature := ctx.GetHeader("X-Razorpay-Signature")
			if !lib.VerifyHMACSignature(lib.RazorpayWebhookSecret(), string(payload), signature) {
				log.Printf("Webhook signature mismatch\n")
				ctx.Status(http.StatusUnauthorized)
				return
			}

			event := gjson.GetBytes(payload, "event").String()
			if event != "payment.captured" {
				ctx.Status(http.StatusOK)
				return
			}
			payment := gjson.GetBytes(payload, "payload.payment.entity")
			orderId := payment.Get("order_id").String()
			paymentId := payment.Get("id").String()

			// The webhook authenticates with its own HMAC, so the per-payment
			// signature check is short-circuited with a gateway-computed proof.
			proof := types.PaymentProof{
				OrderID:   orderId,
				PaymentID: paymentId,
				Signature: lib.ComputePaymentSignature(orderId, paymentId),
			}
			if _, err := getCoordinator().ConfirmReservation(ctx, proof); err != nil {
				log.Printf("Error confirming order [%s] from webhook: %s\n", orderId, err.Error())
				ctx.JSON(reservationErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

func reservationErrorStatus(err error) int {
	switch {
	case common.IsNotFoundError(err):
		return http.StatusNotFound
	case common.IsValidationError(err):
		return http.StatusBadRequest
	case common.IsAvailabilityError(err):
		return http.StatusConflict
	case errors.Is(err, common.ErrBookingExpired):
		return http.StatusGone
	case errors.Is(err, common.ErrPaymentVerification):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}
