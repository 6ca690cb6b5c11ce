package crop

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Crop{}); err != nil {
		log.Fatal("Failed to auto-migrate crops table: ", err)
	}
}
