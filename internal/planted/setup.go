package planted

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&PlantedCrop{}); err != nil {
		log.Fatal("Failed to auto-migrate planted crop table: ", err)
	}
}
