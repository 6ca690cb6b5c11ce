package animal_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/farmstack/farm-backend/internal/animal"
	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/farm"
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
		&animal.AnimalType{}, &animal.Animal{},
	)
	require.NoError(t, err)
	return conn
}

func square(lng, lat, side float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}`,
		lng, lat, lng+side, lat, lng+side, lat+side, lng, lat+side, lng, lat))
}

type fixture struct {
	owner *auth.User
	farm  *farm.Farm
	typ   *animal.AnimalType
}

func newFixture(t *testing.T, conn *gorm.DB, username string) fixture {
	t.Helper()
	user := auth.User{
		UUID:     uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Role:     auth.RoleUser,
	}
	require.NoError(t, conn.Create(&user).Error)

	parent, err := farm.Create(conn, user.ID, farm.CreateInput{
		Name:     username + "'s farm",
		Boundary: square(0, 0, 0.0018),
	})
	require.NoError(t, err)

	typ, err := animal.CreateType(conn, animal.TypeCreateInput{
		Breed:    "Holstein",
		Species:  "Bos taurus",
		Category: animal.CategoryCattle,
	})
	require.NoError(t, err)
	return fixture{owner: &user, farm: parent, typ: typ}
}

func TestCreateTypeValidation(t *testing.T) {
	conn := setupDB(t)

	_, err := animal.CreateType(conn, animal.TypeCreateInput{Category: animal.CategoryCattle})
	assert.ErrorIs(t, err, apperror.ErrInvalid, "breed is required")

	_, err = animal.CreateType(conn, animal.TypeCreateInput{Breed: "Holstein"})
	assert.ErrorIs(t, err, apperror.ErrInvalid, "category is required")

	_, err = animal.CreateType(conn, animal.TypeCreateInput{
		Breed:    "Holstein",
		Category: animal.Category("dinosaur"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestCategoryCannotBeCleared(t *testing.T) {
	conn := setupDB(t)

	typ, err := animal.CreateType(conn, animal.TypeCreateInput{
		Breed:    "Holstein",
		Category: animal.CategoryCattle,
	})
	require.NoError(t, err)

	cleared := animal.Category("")
	_, err = animal.UpdateType(conn, typ.UUID, animal.TypeUpdateInput{Category: &cleared})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	sheep := animal.CategorySheep
	updated, err := animal.UpdateType(conn, typ.UUID, animal.TypeUpdateInput{Category: &sheep})
	require.NoError(t, err)
	assert.Equal(t, animal.CategorySheep, updated.Category)
}

func TestDeleteTypeRejectsReferenced(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	created, err := animal.Create(conn, fx.owner.ID, animal.CreateInput{
		FarmUUID:       fx.farm.UUID,
		AnimalTypeUUID: fx.typ.UUID,
		Name:           "Bessie",
	})
	require.NoError(t, err)

	err = animal.DeleteType(conn, fx.typ.UUID)
	assert.ErrorIs(t, err, apperror.ErrReferenced)

	require.NoError(t, animal.Delete(conn, fx.owner.ID, created.UUID))
	assert.NoError(t, animal.DeleteType(conn, fx.typ.UUID))
}

func TestCreateAnimalRequiresMatchingPlot(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	otherFarm, err := farm.Create(conn, fx.owner.ID, farm.CreateInput{
		Name:     "Other farm",
		Boundary: square(1, 1, 0.0018),
	})
	require.NoError(t, err)
	strayPlot, err := plot.Create(conn, fx.owner.ID, plot.CreateInput{
		Name:     "Stray pasture",
		FarmUUID: otherFarm.UUID,
		PlotType: plot.TypePasture,
		Boundary: square(1.0001, 1.0001, 0.0004),
	})
	require.NoError(t, err)

	_, err = animal.Create(conn, fx.owner.ID, animal.CreateInput{
		FarmUUID:       fx.farm.UUID,
		PlotUUID:       &strayPlot.UUID,
		AnimalTypeUUID: fx.typ.UUID,
		Name:           "Bessie",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestAnimalCannotMoveFarms(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	created, err := animal.Create(conn, fx.owner.ID, animal.CreateInput{
		FarmUUID:       fx.farm.UUID,
		AnimalTypeUUID: fx.typ.UUID,
		Name:           "Bessie",
	})
	require.NoError(t, err)

	other := uuid.NewString()
	_, err = animal.Update(conn, fx.owner.ID, created.UUID, animal.UpdateInput{FarmUUID: &other})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestUpdateClearsPlotWithEmptyString(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	pasture, err := plot.Create(conn, fx.owner.ID, plot.CreateInput{
		Name:     "Pasture",
		FarmUUID: fx.farm.UUID,
		PlotType: plot.TypePasture,
		Boundary: square(0.0001, 0.0001, 0.0004),
	})
	require.NoError(t, err)

	created, err := animal.Create(conn, fx.owner.ID, animal.CreateInput{
		FarmUUID:       fx.farm.UUID,
		PlotUUID:       &pasture.UUID,
		AnimalTypeUUID: fx.typ.UUID,
		Name:           "Bessie",
	})
	require.NoError(t, err)

	view, err := animal.Get(conn, fx.owner.ID, created.UUID)
	require.NoError(t, err)
	require.NotNil(t, view.PlotUUID)

	empty := ""
	updated, err := animal.Update(conn, fx.owner.ID, created.UUID, animal.UpdateInput{PlotUUID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.PlotUUID)
}

func TestGetHidesOtherOwners(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")
	other := newFixture(t, conn, "neighbor")

	created, err := animal.Create(conn, fx.owner.ID, animal.CreateInput{
		FarmUUID:       fx.farm.UUID,
		AnimalTypeUUID: fx.typ.UUID,
		Name:           "Bessie",
	})
	require.NoError(t, err)

	_, err = animal.Get(conn, other.owner.ID, created.UUID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSearchByNameAndIdentifier(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	for _, in := range []animal.CreateInput{
		{FarmUUID: fx.farm.UUID, AnimalTypeUUID: fx.typ.UUID, Name: "Bessie", Identifier: "EAR-001"},
		{FarmUUID: fx.farm.UUID, AnimalTypeUUID: fx.typ.UUID, Name: "Daisy", Identifier: "EAR-002"},
	} {
		_, err := animal.Create(conn, fx.owner.ID, in)
		require.NoError(t, err)
	}

	byName, err := animal.Search(conn, fx.owner.ID, "bess", 0, 100)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Bessie", byName[0].Name)

	byTag, err := animal.Search(conn, fx.owner.ID, "ear-00", 0, 100)
	require.NoError(t, err)
	assert.Len(t, byTag, 2)
}

func TestStatisticsAndCounts(t *testing.T) {
	conn := setupDB(t)
	fx := newFixture(t, conn, "rancher")

	hen, err := animal.CreateType(conn, animal.TypeCreateInput{
		Breed:    "Leghorn",
		Category: animal.CategoryChicken,
	})
	require.NoError(t, err)

	removed := time.Now().Add(-24 * time.Hour)
	fixtures := []animal.CreateInput{
		{FarmUUID: fx.farm.UUID, AnimalTypeUUID: fx.typ.UUID, Name: "Bessie"},
		{FarmUUID: fx.farm.UUID, AnimalTypeUUID: fx.typ.UUID, Name: "Daisy", RemovalDate: &removed},
		{FarmUUID: fx.farm.UUID, AnimalTypeUUID: hen.UUID, Name: "Flock", IsBatch: true},
	}
	for _, in := range fixtures {
		_, err := animal.Create(conn, fx.owner.ID, in)
		require.NoError(t, err)
	}

	stats, err := animal.GetStatistics(conn, fx.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalAnimals)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(1), stats.Removed)
	assert.Equal(t, int64(2), stats.ByCategory["cattle"])
	assert.Equal(t, int64(1), stats.ByCategory["chicken"])

	active, err := animal.Count(conn, fx.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	typeStats, err := animal.GetTypeStatistics(conn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), typeStats.TotalTypes)
	assert.Equal(t, int64(1), typeStats.ByCategory["chicken"])
}
