package main

import (
	"crs/src/db"
	"crs/src/models"
	"crs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func manufacturerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/manufacturers", func(ctx *gin.Context) {
			db := db.GetDb()
			manufacturers := make([]models.Manufacturer, 0)
			if err := db.
				Model(&models.Manufacturer{}).
				Order("name ASC").
				Find(&manufacturers).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": manufacturers, "count": len(manufacturers)})
		}).
		GET("/manufacturers/:id", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var manufacturer models.Manufacturer
			if err := db.
				Model(&models.Manufacturer{}).
				Where(&models.Manufacturer{ID: id}).
				Preload("Cars").
				First(&manufacturer).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": manufacturer})
		})
	return g
}

func adminManufacturerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/manufacturers", func(ctx *gin.Context) {
			var body types.CreateManufacturerRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			manufacturer := models.Manufacturer{Name: body.Name}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.Manufacturer{}).
					Where("name = ?", body.Name).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return gorm.ErrDuplicatedKey
				}
				return tx.Create(&manufacturer).Error
			}); err != nil {
				log.Printf("Error creating manufacturer [%s]: %s\n", body.Name, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": manufacturer})
		}).
		DELETE("/manufacturers/:id", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.Car{}).
					Where("manufacturer_id = ?", id).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return gorm.ErrForeignKeyViolated
				}
				return tx.Delete(&models.Manufacturer{ID: id}).Error
			}); err != nil {
				log.Printf("Error deleting manufacturer [%s]: %s\n", id, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
