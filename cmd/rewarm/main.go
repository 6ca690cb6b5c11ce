package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/farmstack/farm-backend/internal/animal"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/joho/godotenv"
)

// Rewarms the shared catalog caches after a bulk import or deploy, so the
// first requests do not all stampede the database.
func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Fatal("REDIS_ADDR not set")
	}
	cache.Default = cache.NewRedis(addr)

	ctx := context.Background()

	crops, err := crop.List(db.DB, crop.ListFilter{}, 0, 100)
	if err != nil {
		log.Fatalf("listing crops: %v", err)
	}
	// Same key an unfiltered first-page list request would compute.
	cropKey := cache.UserKey(cache.SystemScope, "crops", "list", cache.QueryHash(map[string]interface{}{
		"skip": 0, "limit": 100, "crop_group": crop.CropGroup(""), "lifecycle": crop.Lifecycle(""),
	}))
	warm(ctx, cropKey, crops)

	types, err := animal.ListTypes(db.DB, "", 0, 100)
	if err != nil {
		log.Fatalf("listing animal types: %v", err)
	}
	typeKey := cache.UserKey(cache.SystemScope, "animal_types", "list", cache.QueryHash(map[string]interface{}{
		"skip": 0, "limit": 100, "category": animal.Category(""),
	}))
	warm(ctx, typeKey, types)

	log.Printf("Rewarmed catalog caches: %d crops, %d animal types", len(crops), len(types))
}

func warm(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Fatalf("marshaling %s: %v", key, err)
	}
	cache.Default.Set(ctx, key, payload, cache.ListTTL)
}
