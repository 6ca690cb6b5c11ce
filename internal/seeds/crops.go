package seeds

import (
	"log"
	"os"

	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
)

// SeedCrops loads the bundled crop dataset into the catalog. Existing
// entries are skipped, so re-running the seeder is safe.
func SeedCrops() error {
	path := os.Getenv("CROP_DATASET")
	if path == "" {
		path = "assets/crops.yaml"
	}

	report, err := crop.ImportDataset(db.DB, path, true)
	if err != nil {
		return err
	}

	log.Printf("Seeded crops: %d created, %d skipped, %d errors", report.Created, report.Skipped, report.Errors)
	for _, detail := range report.ErrorDetails {
		log.Printf("  %s", detail)
	}
	return nil
}
