package crop_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/farm"
	"github.com/farmstack/farm-backend/internal/planted"
	"github.com/farmstack/farm-backend/internal/plot"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn := db.ConnectMemory()
	err := conn.AutoMigrate(
		&auth.User{}, &farm.Farm{},
		&plot.Plot{}, &plot.TypeDataRecord{},
		&crop.Crop{}, &planted.PlantedCrop{},
	)
	require.NoError(t, err)
	return conn
}

func TestCreateAndScientificName(t *testing.T) {
	conn := setupDB(t)

	created, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		Genus:      "Solanum",
		Species:    "lycopersicum",
		CropGroup:  crop.GroupVegetable,
		Lifecycle:  crop.LifecycleAnnual,
	})
	require.NoError(t, err)

	require.NotNil(t, created.ScientificName())
	assert.Equal(t, "Solanum lycopersicum", *created.ScientificName())

	partial, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Mystery Herb",
		Genus:      "Ocimum",
	})
	require.NoError(t, err)
	assert.Nil(t, partial.ScientificName(), "genus alone does not make a scientific name")
}

func TestScientificNameInJSON(t *testing.T) {
	conn := setupDB(t)

	created, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		Genus:      "Solanum",
		Species:    "lycopersicum",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(created)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "Solanum lycopersicum", payload["scientific_name"])
	assert.NotContains(t, payload, "ID", "internal key must not leak")
}

func TestCreateRejectsSuppliedScientificName(t *testing.T) {
	conn := setupDB(t)

	name := "Solanum lycopersicum"
	_, err := crop.Create(conn, crop.CreateInput{
		CommonName:     "Tomato",
		ScientificName: &name,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestEnumValidation(t *testing.T) {
	conn := setupDB(t)

	_, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		CropGroup:  crop.CropGroup("fungus"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		Lifecycle:  crop.Lifecycle("eternal"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = crop.Create(conn, crop.CreateInput{
		CommonName:   "Tomato",
		SeedlingType: crop.SeedlingType("cutting"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestUpdateClearsEnumWithEmptyString(t *testing.T) {
	conn := setupDB(t)

	created, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		CropGroup:  crop.GroupVegetable,
	})
	require.NoError(t, err)

	cleared := crop.CropGroup("")
	updated, err := crop.Update(conn, created.UUID, crop.UpdateInput{CropGroup: &cleared})
	require.NoError(t, err)
	assert.Empty(t, updated.CropGroup)

	bogus := crop.CropGroup("fungus")
	_, err = crop.Update(conn, created.UUID, crop.UpdateInput{CropGroup: &bogus})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestSearchFoldsCase(t *testing.T) {
	conn := setupDB(t)

	_, err := crop.Create(conn, crop.CreateInput{
		CommonName: "Tomato",
		Genus:      "Solanum",
		Species:    "lycopersicum",
	})
	require.NoError(t, err)
	_, err = crop.Create(conn, crop.CreateInput{CommonName: "Carrot"})
	require.NoError(t, err)

	results, err := crop.Search(conn, "TOM", 0, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tomato", results[0].CommonName)

	// Genus and species are searched too.
	results, err = crop.Search(conn, "solanum", 0, 100)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = crop.Search(conn, "   ", 0, 100)
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestDeleteRejectsReferencedCrop(t *testing.T) {
	conn := setupDB(t)

	user := auth.User{UUID: uuid.NewString(), Username: "grower", Email: "grower@example.com", Role: auth.RoleUser}
	require.NoError(t, conn.Create(&user).Error)

	parent, err := farm.Create(conn, user.ID, farm.CreateInput{
		Name: "Farm",
		Boundary: json.RawMessage(
			`{"type":"Polygon","coordinates":[[[0,0],[0.0018,0],[0.0018,0.0018],[0,0.0018],[0,0]]]}`),
	})
	require.NoError(t, err)
	field, err := plot.Create(conn, user.ID, plot.CreateInput{
		Name:     "Field",
		FarmUUID: parent.UUID,
		Boundary: json.RawMessage(
			`{"type":"Polygon","coordinates":[[[0.0001,0.0001],[0.0005,0.0001],[0.0005,0.0005],[0.0001,0.0005],[0.0001,0.0001]]]}`),
	})
	require.NoError(t, err)

	tomato, err := crop.Create(conn, crop.CreateInput{CommonName: "Tomato"})
	require.NoError(t, err)
	record, err := planted.Create(conn, user.ID, planted.CreateInput{
		CropUUID: tomato.UUID,
		PlotUUID: field.UUID,
	})
	require.NoError(t, err)

	err = crop.Delete(conn, tomato.UUID)
	assert.ErrorIs(t, err, apperror.ErrReferenced)

	// Once the planting is gone the crop can go too.
	require.NoError(t, planted.Delete(conn, user.ID, record.UUID))
	assert.NoError(t, crop.Delete(conn, tomato.UUID))
}

func TestStatistics(t *testing.T) {
	conn := setupDB(t)

	days := func(d int) *int { return &d }
	fixtures := []crop.CreateInput{
		{CommonName: "Tomato", CropGroup: crop.GroupVegetable, Lifecycle: crop.LifecycleAnnual, DaysToMaturity: days(80)},
		{CommonName: "Carrot", CropGroup: crop.GroupVegetable, Lifecycle: crop.LifecycleBiennial, DaysToMaturity: days(70)},
		{CommonName: "Apple", CropGroup: crop.GroupFruit, Lifecycle: crop.LifecyclePerennial},
		{CommonName: "Unsorted"},
	}
	for _, in := range fixtures {
		_, err := crop.Create(conn, in)
		require.NoError(t, err)
	}

	stats, err := crop.GetStatistics(conn)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalCrops)
	assert.Equal(t, int64(2), stats.ByCropGroup["vegetable"])
	assert.Equal(t, int64(1), stats.ByCropGroup["fruit"])
	assert.Equal(t, int64(1), stats.ByCropGroup["unknown"])
	assert.Equal(t, int64(1), stats.ByLifecycle["annual"])
	assert.Equal(t, int64(1), stats.ByLifecycle["unknown"])
	assert.InDelta(t, 75, stats.AvgDaysToMaturity, 0.01)
}

func TestImportDataset(t *testing.T) {
	conn := setupDB(t)

	path := t.TempDir() + "/crops.yaml"
	writeDataset(t, path, `
- crop_common_name: Tomato
  crop_genus: Solanum
  crop_specie: lycopersicum
  crop_group: Vegetables and melons
  crop_subgroup: Fruit-bearing vegetables
  lifecycle: ANNUAL
  seeding_type: SEED
  needs_transplant: true
  germination_days: 8
  transplant_days: 30
  harvest_days: 80
- crop_common_name: Wheat
  crop_group: Cereals
  seeding_type: SEED
  needs_transplant: false
- crop_common_name: ""
`)

	report, err := crop.ImportDataset(conn, path, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Errors)

	tomato, err := crop.Search(conn, "tomato", 0, 10)
	require.NoError(t, err)
	require.Len(t, tomato, 1)
	assert.Equal(t, crop.GroupVegetable, tomato[0].CropGroup)
	assert.Equal(t, crop.LifecycleAnnual, tomato[0].Lifecycle)
	assert.Equal(t, crop.SeedlingTransplant, tomato[0].SeedlingType)
	assert.Equal(t, "Subgroup: Fruit-bearing vegetables", tomato[0].Notes)

	// Re-running skips everything that is already present.
	report, err = crop.ImportDataset(conn, path, true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Skipped)
}

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCountWithFilter(t *testing.T) {
	conn := setupDB(t)

	for _, in := range []crop.CreateInput{
		{CommonName: "Tomato", CropGroup: crop.GroupVegetable},
		{CommonName: "Carrot", CropGroup: crop.GroupVegetable},
		{CommonName: "Apple", CropGroup: crop.GroupFruit},
	} {
		_, err := crop.Create(conn, in)
		require.NoError(t, err)
	}

	total, err := crop.Count(conn, crop.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	veg, err := crop.Count(conn, crop.ListFilter{Group: crop.GroupVegetable})
	require.NoError(t, err)
	assert.Equal(t, int64(2), veg)
}

func TestGetByMalformedAndMissing(t *testing.T) {
	conn := setupDB(t)

	_, err := crop.Get(conn, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = crop.Get(conn, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
