package main

import (
	"log"

	"github.com/farmstack/farm-backend/internal/animal"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	crop.Init()
	animal.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
