package plot

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Plot{}, &TypeDataRecord{}); err != nil {
		log.Fatal("Failed to auto-migrate plot tables: ", err)
	}
}
