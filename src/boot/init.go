package boot

import (
	"crs/src/common"
	"crs/src/db"
	"crs/src/lib"
	"crs/src/models"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Manufacturer{},
		&models.Car{},
		&models.Rentable{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
	log.Println("Jobs in queue:", len(sched.Jobs()))
}

// StartBookingSweeper schedules the recurring pass that fails pending
// bookings older than the grace window.
func StartBookingSweeper() {
	store := common.NewStore(db.GetDb())
	id, err := lib.CreateCronJob(common.BookingSweeperTask(store), common.SweepInterval)
	if err != nil {
		log.Printf("Error scheduling booking sweeper: %s\n", err.Error())
		return
	}
	log.Printf("Booking sweeper scheduled: %s\n", *id)
}
