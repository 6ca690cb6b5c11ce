package auth

import (
	"log"

	"github.com/farmstack/farm-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&User{}); err != nil {
		log.Fatal("Failed to auto-migrate users table: ", err)
	}
}
