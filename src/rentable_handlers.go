package main

import (
	"crs/src/db"
	"crs/src/models"
	"crs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func rentableHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rentables", func(ctx *gin.Context) {
			db := db.GetDb()
			rentables := make([]models.Rentable, 0)
			if err := db.
				Model(&models.Rentable{}).
				Preload("Car.Manufacturer").
				Find(&rentables).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rentables, "count": len(rentables)})
		}).
		GET("/rentables/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var rentable models.Rentable
			if err := db.
				Model(&models.Rentable{}).
				Where(&models.Rentable{ID: params.ID}).
				Preload("Car.Manufacturer").
				First(&rentable).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rentable})
		})
	return g
}

func adminRentableHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/rentables", func(ctx *gin.Context) {
			var body types.CreateRentableRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rentable := models.Rentable{
				CarID:             body.CarID,
				PricePerDay:       body.PricePerDay,
				AvailableQuantity: int(body.AvailableQuantity),
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var car models.Car
				if err := tx.
					Model(&models.Car{}).
					Where(&models.Car{ID: body.CarID}).
					First(&car).
					Error; err != nil {
					return err
				}
				// One inventory line per car. Quantity covers the whole fleet.
				var count int64
				if err := tx.
					Model(&models.Rentable{}).
					Where("car_id = ?", body.CarID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return gorm.ErrDuplicatedKey
				}
				return tx.Create(&rentable).Error
			}); err != nil {
				log.Printf("Error creating rentable for car [%d]: %s\n", body.CarID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			syncCarDocument(body.CarID)
			ctx.JSON(http.StatusCreated, gin.H{"data": rentable})
		}).
		PATCH("/rentables/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRentableRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var rentable models.Rentable
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Rentable{}).
					Where(&models.Rentable{ID: params.ID}).
					First(&rentable).
					Error; err != nil {
					return err
				}
				updates := map[string]any{}
				if body.PricePerDay != nil {
					updates["price_per_day"] = *body.PricePerDay
				}
				if body.AvailableQuantity != nil {
					updates["available_quantity"] = *body.AvailableQuantity
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.
					Model(&models.Rentable{}).
					Where(&models.Rentable{ID: params.ID}).
					Updates(updates).
					Error
			}); err != nil {
				log.Printf("Error updating rentable [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			syncCarDocument(rentable.CarID)
			ctx.Status(http.StatusOK)
		}).
		DELETE("/rentables/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var rentable models.Rentable
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Rentable{}).
					Where(&models.Rentable{ID: params.ID}).
					First(&rentable).
					Error; err != nil {
					return err
				}
				var count int64
				if err := tx.
					Model(&models.Booking{}).
					Where("rentable_id = ? AND status = ?", params.ID, types.BOOKING_BOOKED).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return gorm.ErrForeignKeyViolated
				}
				return tx.Delete(&models.Rentable{ID: params.ID}).Error
			}); err != nil {
				log.Printf("Error deleting rentable [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			syncCarDocument(rentable.CarID)
			ctx.Status(http.StatusOK)
		})
	return g
}
