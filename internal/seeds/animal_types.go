package seeds

import (
	"log"

	"github.com/farmstack/farm-backend/internal/animal"
	"github.com/farmstack/farm-backend/internal/db"
)

func intPtr(n int) *int { return &n }

// baselineTypes is a starter catalog so a fresh deployment has something to
// register animals against.
var baselineTypes = []animal.TypeCreateInput{
	{Breed: "Holstein", Species: "Bos taurus", Sex: animal.SexMixed, Category: animal.CategoryCattle,
		CategoryType: "dairy", PubertyAge: intPtr(365), EstrusCycleType: "polyestrous",
		EstrusCycleLength: intPtr(21), EstrusDuration: intPtr(18)},
	{Breed: "Angus", Species: "Bos taurus", Sex: animal.SexMixed, Category: animal.CategoryCattle,
		CategoryType: "beef", DaysToMarket: intPtr(550)},
	{Breed: "Suffolk", Species: "Ovis aries", Sex: animal.SexMixed, Category: animal.CategorySheep,
		CategoryType: "meat", EstrusCycleLength: intPtr(17)},
	{Breed: "Saanen", Species: "Capra hircus", Sex: animal.SexMixed, Category: animal.CategoryGoat,
		CategoryType: "dairy"},
	{Breed: "Leghorn", Species: "Gallus gallus", Sex: animal.SexMixed, Category: animal.CategoryChicken,
		CategoryType: "layer", AgeAtFirstEgg: intPtr(140)},
	{Breed: "Pekin", Species: "Anas platyrhynchos", Sex: animal.SexMixed, Category: animal.CategoryDuck,
		CategoryType: "meat", DaysToMarket: intPtr(49)},
	{Breed: "Yorkshire", Species: "Sus scrofa", Sex: animal.SexMixed, Category: animal.CategoryPig,
		CategoryType: "meat", DaysToMarket: intPtr(180)},
	{Breed: "Nile Tilapia", Species: "Oreochromis niloticus", Sex: animal.SexMixed, Category: animal.CategoryFish,
		DaysToMarket: intPtr(240)},
}

// SeedAnimalTypes fills the animal type catalog with common breeds. Breeds
// already present are left alone.
func SeedAnimalTypes() error {
	created := 0
	for _, in := range baselineTypes {
		var existing int64
		err := db.DB.Model(&animal.AnimalType{}).Where("breed = ?", in.Breed).Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		if _, err := animal.CreateType(db.DB, in); err != nil {
			return err
		}
		created++
	}
	log.Printf("Seeded animal types: %d created", created)
	return nil
}
