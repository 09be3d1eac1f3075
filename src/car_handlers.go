package main

import (
	"crs/src/common"
	"crs/src/db"
	"crs/src/lib"
	awslib "crs/src/lib/aws"
	"crs/src/models"
	"crs/src/types"
	"crs/src/utils"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func carHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cars", func(ctx *gin.Context) {
			query := ctx.Query("query")
			if query != "" {
				docs, err := lib.SearchCarDocuments(ctx, query)
				if err == nil {
					ctx.JSON(http.StatusOK, gin.H{"data": docs, "count": len(docs)})
					return
				}
				// The mirror is a read optimization. Fall through to the database
				// when it is unreachable.
				log.Printf("Error searching car index: %s\n", err.Error())
			}
			db := db.GetDb()
			cars := make([]models.Car, 0)
			if err := db.
				Model(&models.Car{}).
				Preload("Manufacturer").
				Preload("Rentable").
				Find(&cars).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": cars, "count": len(cars)})
		}).
		GET("/cars/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var car models.Car
			if err := db.
				Model(&models.Car{}).
				Where(&models.Car{ID: params.ID}).
				Preload("Manufacturer").
				Preload("Rentable").
				First(&car).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": car})
		})
	return g
}

func availableCarHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cars/available", func(ctx *gin.Context) {
			var query types.AvailableCarsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pickUpDate, err := utils.ParseRentalDate(query.PickUpDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dropOffDate, err := utils.ParseRentalDate(query.DropOffDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if dropOffDate.Before(pickUpDate) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": common.ErrInvalidDateRange.Error()})
				return
			}
			rentables, err := availableRentables(&query, pickUpDate, dropOffDate)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rentables, "count": len(rentables)})
		})
	return g
}

// availableRentables lists inventory lines with at least one free unit over
// the date range. The overlap predicate here mirrors the one the booking
// transaction locks on; this listing is advisory and a reservation re-checks
// under the row lock.
func availableRentables(query *types.AvailableCarsQuery, pickUpDate, dropOffDate time.Time) ([]models.Rentable, error) {
	db := db.GetDb()
	booked := db.
		Model(&models.Booking{}).
		Select("COUNT(*)").
		Where("bookings.rentable_id = rentables.id").
		Where("bookings.status = ?", types.BOOKING_BOOKED).
		Where(
			db.
				Where("bookings.pick_up_date BETWEEN ? AND ?", pickUpDate, dropOffDate).
				Or("bookings.drop_off_date BETWEEN ? AND ?", pickUpDate, dropOffDate).
				Or("bookings.pick_up_date <= ? AND bookings.drop_off_date >= ?", pickUpDate, dropOffDate),
		)

	tx := db.
		Model(&models.Rentable{}).
		Joins("Car").
		Joins("Car.Manufacturer").
		Where("rentables.available_quantity > (?)", booked)

	if query.Query != "" {
		like := "%" + query.Query + "%"
		tx = tx.Where(
			db.
				Where(`"Car".name ILIKE ?`, like).
				Or(`"Car".type ILIKE ?`, like).
				Or(`"Car__Manufacturer".name ILIKE ?`, like),
		)
	}
	if len(query.TransmissionType) > 0 {
		tx = tx.Where(`"Car".transmission_type IN ?`, query.TransmissionType)
	}
	if len(query.FuelType) > 0 {
		tx = tx.Where(`"Car".fuel_type IN ?`, query.FuelType)
	}
	if len(query.NumberOfSeats) > 0 {
		tx = tx.Where(`"Car".number_of_seats IN ?`, query.NumberOfSeats)
	}
	if query.MaxPrice > 0 {
		tx = tx.Where("rentables.price_per_day <= ?", query.MaxPrice)
	}
	switch query.PriceSort {
	case "asc":
		tx = tx.Order("rentables.price_per_day ASC")
	case "desc":
		tx = tx.Order("rentables.price_per_day DESC")
	}

	rentables := make([]models.Rentable, 0)
	if err := tx.Find(&rentables).Error; err != nil {
		log.Printf("Error listing available cars: %s\n", err.Error())
		return nil, err
	}
	return rentables, nil
}

func adminCarHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/cars", func(ctx *gin.Context) {
			var body types.CreateCarRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			manufacturerId, err := uuid.Parse(body.ManufacturerID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			car := models.Car{
				ManufacturerID:   manufacturerId,
				Name:             body.Name,
				Type:             body.Type,
				Year:             body.Year,
				NumberOfSeats:    body.NumberOfSeats,
				FuelType:         body.FuelType,
				TransmissionType: body.TransmissionType,
				Description:      body.Description,
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var manufacturer models.Manufacturer
				if err := tx.
					Model(&models.Manufacturer{}).
					Where(&models.Manufacturer{ID: manufacturerId}).
					First(&manufacturer).
					Error; err != nil {
					return err
				}
				if err := tx.Create(&car).Error; err != nil {
					return err
				}

				if primary, err := ctx.FormFile("primary_image"); err == nil {
					url, err := uploadCarImage(car.ID, body.Name, 0, primary)
					if err != nil {
						return err
					}
					car.PrimaryImageUrl = url
				}
				if form, err := ctx.MultipartForm(); err == nil {
					for i, secondary := range form.File["secondary_images"] {
						url, err := uploadCarImage(car.ID, body.Name, i+1, secondary)
						if err != nil {
							return err
						}
						car.SecondaryImagesUrls = append(car.SecondaryImagesUrls, *url)
					}
				}
				if car.PrimaryImageUrl != nil || len(car.SecondaryImagesUrls) > 0 {
					if err := tx.
						Model(&models.Car{}).
						Where(&models.Car{ID: car.ID}).
						Updates(&models.Car{
							PrimaryImageUrl:     car.PrimaryImageUrl,
							SecondaryImagesUrls: car.SecondaryImagesUrls,
						}).
						Error; err != nil {
						return err
					}
				}
				car.Manufacturer = &manufacturer
				return nil
			}); err != nil {
				log.Printf("Error creating car [%s]: %s\n", body.Name, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			syncCarDocument(car.ID)
			ctx.JSON(http.StatusCreated, gin.H{"data": car})
		}).
		PATCH("/cars/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateCarRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var car models.Car
				if err := tx.
					Model(&models.Car{}).
					Where(&models.Car{ID: params.ID}).
					First(&car).
					Error; err != nil {
					return err
				}
				updates := models.Car{
					Name:             body.Name,
					Type:             body.Type,
					Year:             body.Year,
					NumberOfSeats:    body.NumberOfSeats,
					FuelType:         body.FuelType,
					TransmissionType: body.TransmissionType,
					Description:      body.Description,
				}
				if primary, err := ctx.FormFile("primary_image"); err == nil {
					name := body.Name
					if name == "" {
						name = car.Name
					}
					url, err := uploadCarImage(car.ID, name, 0, primary)
					if err != nil {
						return err
					}
					updates.PrimaryImageUrl = url
				}
				return tx.
					Model(&models.Car{}).
					Where(&models.Car{ID: params.ID}).
					Updates(&updates).
					Error
			}); err != nil {
				log.Printf("Error updating car [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			syncCarDocument(params.ID)
			ctx.Status(http.StatusOK)
		}).
		DELETE("/cars/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var car models.Car
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Car{}).
					Where(&models.Car{ID: params.ID}).
					First(&car).
					Error; err != nil {
					return err
				}
				var count int64
				if err := tx.
					Model(&models.Rentable{}).
					Where("car_id = ?", params.ID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return gorm.ErrForeignKeyViolated
				}
				return tx.Delete(&models.Car{ID: params.ID}).Error
			}); err != nil {
				log.Printf("Error deleting car [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			deleteCarImages(&car)
			if err := lib.RemoveCarDocument(params.ID); err != nil {
				log.Printf("Error removing car [%d] from index: %s\n", params.ID, err.Error())
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

// deleteCarImages removes a deleted car's objects from storage. The keys are
// reconstructed from the car's name the same way uploadCarImage derived them.
func deleteCarImages(car *models.Car) {
	if car.PrimaryImageUrl == nil && len(car.SecondaryImagesUrls) == 0 {
		return
	}
	total := len(car.SecondaryImagesUrls) + 1
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("cars/%d/%s-%s", car.ID, slug.Make(car.Name), strconv.Itoa(i))
		if err := awslib.S3DeleteCarImage(key); err != nil {
			log.Printf("Error deleting image [%s]: %s\n", key, err.Error())
		}
	}
}

func uploadCarImage(carId uint, name string, ordinal int, file *multipart.FileHeader) (*string, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	key := fmt.Sprintf("cars/%d/%s-%s", carId, slug.Make(name), strconv.Itoa(ordinal))
	contentType := file.Header.Get("Content-Type")
	return awslib.S3UploadCarImage(key, f, contentType)
}

// syncCarDocument refreshes the search mirror for one car. Mirror failures are
// logged and swallowed; the database stays the source of truth.
func syncCarDocument(carId uint) {
	db := db.GetDb()
	var car models.Car
	if err := db.
		Model(&models.Car{}).
		Where(&models.Car{ID: carId}).
		Preload("Manufacturer").
		Preload("Rentable").
		First(&car).
		Error; err != nil {
		log.Printf("Error loading car [%d] for indexing: %s\n", carId, err.Error())
		return
	}
	doc := lib.CarDocument{
		ID:               car.ID,
		Name:             car.Name,
		Year:             car.Year,
		Type:             car.Type,
		Description:      car.Description,
		NumberOfSeats:    car.NumberOfSeats,
		TransmissionType: car.TransmissionType,
		FuelType:         car.FuelType,
	}
	if car.PrimaryImageUrl != nil {
		doc.PrimaryImageUrl = *car.PrimaryImageUrl
	}
	if car.Manufacturer != nil {
		doc.Manufacturer = car.Manufacturer.Name
	}
	if car.Rentable != nil {
		doc.PricePerDay = car.Rentable.PricePerDay
		doc.AvailableQuantity = car.Rentable.AvailableQuantity
	}
	if err := lib.IndexCarDocument(&doc); err != nil {
		log.Printf("Error indexing car [%d]: %s\n", carId, err.Error())
	}
}
