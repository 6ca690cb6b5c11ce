package animal

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&AnimalType{}, &Animal{}); err != nil {
		log.Fatal("Failed to auto-migrate animal tables: ", err)
	}
}
