package farm_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/farmstack/farm-backend/internal/animal"
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
		&crop.Crop{},
		&animal.AnimalType{}, &animal.Animal{},
		&planted.PlantedCrop{},
	)
	require.NoError(t, err)
	return conn
}

func newUser(t *testing.T, conn *gorm.DB, username string) *auth.User {
	t.Helper()
	user := auth.User{
		UUID:     uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Role:     auth.RoleUser,
	}
	require.NoError(t, conn.Create(&user).Error)
	return &user
}

// square builds a GeoJSON square with its south-west corner at (lng, lat).
// A side of 0.0009 degrees near the equator is roughly 100 meters.
func square(lng, lat, side float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}`,
		lng, lat, lng+side, lat, lng+side, lat+side, lng, lat+side, lng, lat))
}

func TestCreateDerivesGeometry(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")

	created, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "North Field Farm",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)

	require.NoError(t, uuid.Validate(created.UUID))
	assert.InDelta(t, 10000, created.AreaSqm, 150, "a 100m square should be about a hectare")
	assert.InDelta(t, 1.0, created.AreaHectares(), 0.02)
	require.True(t, created.Centroid.Valid)
	assert.InDelta(t, 0.00045, created.Centroid.Point.Lon(), 1e-9)
	assert.InDelta(t, 0.00045, created.Centroid.Point.Lat(), 1e-9)
}

func TestCreateRejectsDerivedFields(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")

	area := 500.0
	_, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Cheater Farm",
		Boundary: square(0, 0, 0.0009),
		AreaSqm:  &area,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Cheater Farm",
		Boundary: square(0, 0, 0.0009),
		Centroid: json.RawMessage(`{"type":"Point","coordinates":[1,1]}`),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestBoundaryUpdateRederives(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")

	created, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Elastic Farm",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)
	before := created.AreaSqm

	updated, err := farm.Update(conn, owner.ID, created.UUID, farm.UpdateInput{
		Boundary: square(0, 0, 0.0018),
	})
	require.NoError(t, err)

	assert.Equal(t, "Elastic Farm", updated.Name)
	assert.InDelta(t, 4*before, updated.AreaSqm, 4*before*0.02, "doubling the side quadruples the area")
	assert.InDelta(t, 0.0009, updated.Centroid.Point.Lon(), 1e-9)
}

func TestOwnershipImmutable(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")
	other := newUser(t, conn, "neighbor")

	created, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Homestead",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)

	_, err = farm.Update(conn, owner.ID, created.UUID, farm.UpdateInput{OwnerID: &other.UUID})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestGetHidesOtherOwners(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")
	other := newUser(t, conn, "neighbor")

	created, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Homestead",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)

	// Another user's farm resolves exactly like a missing one.
	_, err = farm.Get(conn, other.ID, created.UUID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = farm.Get(conn, owner.ID, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = farm.Get(conn, owner.ID, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestStatistics(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")

	small, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Small",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)
	large, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Large",
		Boundary: square(1, 0, 0.0018),
	})
	require.NoError(t, err)

	stats, err := farm.GetStatistics(conn, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalFarms)
	assert.InDelta(t, small.AreaSqm+large.AreaSqm, stats.TotalAreaSqm, 0.01)
	assert.InDelta(t, (small.AreaSqm+large.AreaSqm)/2, stats.AverageAreaSqm, 0.01)
	assert.InDelta(t, small.AreaSqm, stats.SmallestFarmSqm, 0.01)
	assert.InDelta(t, large.AreaSqm, stats.LargestFarmSqm, 0.01)
	assert.InDelta(t, stats.TotalAreaSqm/10000, stats.TotalAreaHectares, 1e-9)
}

func TestStatisticsEmpty(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")

	stats, err := farm.GetStatistics(conn, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalFarms)
	assert.Zero(t, stats.TotalAreaSqm)
}

// seedFullFarm creates a farm with two plots, a planted crop and an animal
// so cascade behavior can be checked across every dependent table.
func seedFullFarm(t *testing.T, conn *gorm.DB, ownerID uint) *farm.Farm {
	t.Helper()

	parent, err := farm.Create(conn, ownerID, farm.CreateInput{
		Name:     "Full Farm",
		Boundary: square(0, 0, 0.0018),
	})
	require.NoError(t, err)

	field, err := plot.Create(conn, ownerID, plot.CreateInput{
		Name:     "Field A",
		FarmUUID: parent.UUID,
		PlotType: plot.TypeField,
		Boundary: square(0.0001, 0.0001, 0.0004),
	})
	require.NoError(t, err)

	barn, err := plot.Create(conn, ownerID, plot.CreateInput{
		Name:     "Barn",
		FarmUUID: parent.UUID,
		PlotType: plot.TypeBarn,
		Boundary: square(0.001, 0.001, 0.0002),
		TypeData: json.RawMessage(`{"name":"Main barn","capacity":40}`),
	})
	require.NoError(t, err)
	_ = barn

	tomato, err := crop.Create(conn, crop.CreateInput{CommonName: "Tomato"})
	require.NoError(t, err)
	_, err = planted.Create(conn, ownerID, planted.CreateInput{
		CropUUID: tomato.UUID,
		PlotUUID: field.UUID,
	})
	require.NoError(t, err)

	holstein, err := animal.CreateType(conn, animal.TypeCreateInput{
		Breed:    "Holstein",
		Category: animal.CategoryCattle,
	})
	require.NoError(t, err)
	_, err = animal.Create(conn, ownerID, animal.CreateInput{
		FarmUUID:       parent.UUID,
		AnimalTypeUUID: holstein.UUID,
		Name:           "Bessie",
	})
	require.NoError(t, err)

	return parent
}

func TestDeleteCascades(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")
	parent := seedFullFarm(t, conn, owner.ID)

	require.NoError(t, farm.Delete(conn, owner.ID, parent.UUID))

	for _, table := range []string{"farms", "plots", "plot_type_data", "planted_crops", "animals"} {
		var count int64
		require.NoError(t, conn.Table(table).Count(&count).Error)
		assert.Zero(t, count, "table %s should be empty after cascade", table)
	}

	// The shared catalogs survive the cascade.
	var crops, types int64
	require.NoError(t, conn.Table("crops").Count(&crops).Error)
	require.NoError(t, conn.Table("animal_types").Count(&types).Error)
	assert.Equal(t, int64(1), crops)
	assert.Equal(t, int64(1), types)
}

func TestDeleteRollsBackMidCascade(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")
	parent := seedFullFarm(t, conn, owner.ID)

	// Sabotage the first cascade step so the transaction has to roll back.
	require.NoError(t, conn.Migrator().DropTable("planted_crops"))

	err := farm.Delete(conn, owner.ID, parent.UUID)
	require.Error(t, err)

	var farms, plots int64
	require.NoError(t, conn.Table("farms").Count(&farms).Error)
	require.NoError(t, conn.Table("plots").Count(&plots).Error)
	assert.Equal(t, int64(1), farms, "farm row must survive a failed cascade")
	assert.Equal(t, int64(2), plots, "plot rows must survive a failed cascade")
}

func TestTotalAreaAndCount(t *testing.T) {
	conn := setupDB(t)
	owner := newUser(t, conn, "grower")
	other := newUser(t, conn, "neighbor")

	mine, err := farm.Create(conn, owner.ID, farm.CreateInput{
		Name:     "Mine",
		Boundary: square(0, 0, 0.0009),
	})
	require.NoError(t, err)
	_, err = farm.Create(conn, other.ID, farm.CreateInput{
		Name:     "Theirs",
		Boundary: square(1, 1, 0.0018),
	})
	require.NoError(t, err)

	count, err := farm.CountByOwner(conn, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, err := farm.TotalAreaByOwner(conn, owner.ID)
	require.NoError(t, err)
	assert.InDelta(t, mine.AreaSqm, total, 0.01)
}
