package farm

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Farm{}); err != nil {
		log.Fatal("Failed to auto-migrate farms table: ", err)
	}
}
