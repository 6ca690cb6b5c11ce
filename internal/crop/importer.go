package crop

import (
	"fmt"
	"os"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// datasetEntry is one record of the bundled crop dataset.
type datasetEntry struct {
	CommonName      string   `yaml:"crop_common_name"`
	Genus           string   `yaml:"crop_genus"`
	Species         string   `yaml:"crop_specie"`
	Group           string   `yaml:"crop_group"`
	Subgroup        string   `yaml:"crop_subgroup"`
	Lifecycle       string   `yaml:"lifecycle"`
	SeedingType     string   `yaml:"seeding_type"`
	NeedsTransplant bool     `yaml:"needs_transplant"`
	GerminationDays *int     `yaml:"germination_days"`
	TransplantDays  *int     `yaml:"transplant_days"`
	HarvestDays     *int     `yaml:"harvest_days"`
	PlantSpacing    *float64 `yaml:"plant_spacing"`
	PlantingMethods []string `yaml:"planting_methods"`
	YieldPerPlant   *float64 `yaml:"yield_per_plant"`
	YieldPerArea    *float64 `yaml:"yield_per_area"`
}

// datasetGroups maps the dataset's taxonomy labels onto the catalog's closed
// crop-group set. Unmapped labels import with no group.
var datasetGroups = map[string]CropGroup{
	"Fruit and nuts":                         GroupFruit,
	"Vegetables and melons":                  GroupVegetable,
	"Cereals":                                GroupCereal,
	"Leguminous crops":                       GroupLegume,
	"High starch root/tuber crops":           GroupRoot,
	"Potatoes and yams":                      GroupTuber,
	"Root, bulb or tuberous vegetables":      GroupRoot,
	"Leafy or stem vegetables":               GroupLeafyGreen,
	"Stimulant, spice and aromatic crops":    GroupHerb,
	"Spice and aromatic crops":               GroupHerb,
	"Medicinal, pesticidal or similar crops": GroupHerb,
	"Other crops":                            GroupOther,
	"Sugar crops":                            GroupOther,
	"Oilseed crops and oleaginous fruits":    GroupOther,
	"Fibre crops":                            GroupOther,
	"Grasses and other fodder crops":         GroupOther,
	"Flower crops":                           GroupFlower,
}

func mapSeedlingType(seedingType string, needsTransplant bool) SeedlingType {
	switch seedingType {
	case "SEED":
		if needsTransplant {
			return SeedlingTransplant
		}
		return SeedlingDirectSeed
	case "SEEDLING_OR_PLANTING_STOCK":
		return SeedlingTransplant
	}
	return ""
}

type ImportReport struct {
	Created      int      `json:"created"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
}

// ImportDataset loads a YAML crop dataset into the catalog. Entries whose
// common name already exists are skipped when skipExisting is set; per-entry
// failures are collected into the report instead of aborting the import.
func ImportDataset(tx *gorm.DB, path string, skipExisting bool) (*ImportReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Invalid("file", "cannot read dataset file: "+path)
	}

	var entries []datasetEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, apperror.Invalid("file", "cannot parse dataset file: "+err.Error())
	}

	report := &ImportReport{ErrorDetails: []string{}}
	for _, entry := range entries {
		commonName := strings.TrimSpace(entry.CommonName)
		if commonName == "" {
			report.Errors++
			report.ErrorDetails = appendDetail(report.ErrorDetails, "entry missing crop_common_name")
			continue
		}

		if skipExisting {
			var existing int64
			if err := tx.Model(&Crop{}).Where("common_name = ?", commonName).Count(&existing).Error; err != nil {
				return nil, apperror.Internal(err)
			}
			if existing > 0 {
				report.Skipped++
				continue
			}
		}

		var lifecycle Lifecycle
		if entry.Lifecycle != "" {
			candidate := Lifecycle(strings.ToLower(entry.Lifecycle))
			if candidate.Valid() {
				lifecycle = candidate
			}
		}

		row := Crop{
			UUID:             uuid.NewString(),
			CommonName:       commonName,
			Genus:            entry.Genus,
			Species:          entry.Species,
			CropGroup:        datasetGroups[entry.Group],
			Lifecycle:        lifecycle,
			SeedlingType:     mapSeedlingType(entry.SeedingType, entry.NeedsTransplant),
			GerminationDays:  entry.GerminationDays,
			DaysToTransplant: entry.TransplantDays,
			DaysToMaturity:   entry.HarvestDays,
			PlantingSpacingM: entry.PlantSpacing,
			PlantingMethods:  entry.PlantingMethods,
			YieldPerPlant:    entry.YieldPerPlant,
			YieldPerArea:     entry.YieldPerArea,
		}
		if entry.Subgroup != "" {
			row.Notes = "Subgroup: " + entry.Subgroup
		}

		if err := tx.Create(&row).Error; err != nil {
			report.Errors++
			report.ErrorDetails = appendDetail(report.ErrorDetails,
				fmt.Sprintf("error importing %s: %v", commonName, err))
			continue
		}
		report.Created++
	}
	return report, nil
}

// appendDetail keeps the report bounded to the first ten failures.
func appendDetail(details []string, msg string) []string {
	if len(details) >= 10 {
		return details
	}
	return append(details, msg)
}
