package auth

import (
	"testing"
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	d := db.ConnectMemory()
	require.NoError(t, d.AutoMigrate(&User{}))
	return d
}

func registerTestUser(t *testing.T, d *gorm.DB) *User {
	t.Helper()
	user, err := Register(d, RegisterInput{
		Username: "farmer_joe",
		Email:    "joe@example.com",
		Password: "Sunflower#1",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	d := setupDB(t)
	user := registerTestUser(t, d)

	assert.NotEmpty(t, user.UUID)
	assert.NotZero(t, user.ID)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, LoginTypePassword, user.LoginType)
	assert.NotEqual(t, "Sunflower#1", user.HashedPassword)
}

func TestRegisterValidation(t *testing.T) {
	d := setupDB(t)

	_, err := Register(d, RegisterInput{Username: "x", Email: "joe@example.com", Password: "Sunflower#1"})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = Register(d, RegisterInput{Username: "farmer_joe", Email: "not-an-email", Password: "Sunflower#1"})
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = Register(d, RegisterInput{Username: "farmer_joe", Email: "joe@example.com", Password: "weak"})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestRegisterDuplicate(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	_, err := Register(d, RegisterInput{
		Username: "farmer_joe",
		Email:    "other@example.com",
		Password: "Sunflower#1",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	user, err := Login(d, "farmer_joe", "Sunflower#1")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	_, err = Login(d, "joe@example.com", "Sunflower#1")
	assert.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	_, err := Login(d, "farmer_joe", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	var stored User
	require.NoError(t, d.Where("username = ?", "farmer_joe").First(&stored).Error)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
}

func TestLoginLockout(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	for i := 0; i < MaxFailedLogins; i++ {
		_, err := Login(d, "farmer_joe", "wrong-password")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}

	var stored User
	require.NoError(t, d.Where("username = ?", "farmer_joe").First(&stored).Error)
	require.NotNil(t, stored.AccountLockedUntil)
	assert.True(t, stored.AccountLockedUntil.After(time.Now()))

	// Correct password is rejected while the lockout window is open.
	_, err := Login(d, "farmer_joe", "Sunflower#1")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginResetsCounters(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	_, _ = Login(d, "farmer_joe", "wrong-password")
	_, err := Login(d, "farmer_joe", "Sunflower#1")
	require.NoError(t, err)

	var stored User
	require.NoError(t, d.Where("username = ?", "farmer_joe").First(&stored).Error)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.AccountLockedUntil)
}

func TestOAuthSignInCreatesAndLinks(t *testing.T) {
	d := setupDB(t)

	claims := &OAuthIDClaims{
		Issuer:        "accounts.google.com",
		Subject:       "google-sub-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		Name:          "Jane Doe",
		GivenName:     "Jane",
		FamilyName:    "Doe",
	}

	created, err := OAuthSignIn(d, claims)
	require.NoError(t, err)
	assert.Equal(t, LoginTypeOAuth, created.LoginType)
	assert.True(t, created.IsVerified)

	// Second sign-in with the same subject returns the same account.
	again, err := OAuthSignIn(d, claims)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, again.UUID)
}

func TestOAuthLinksExistingPasswordAccount(t *testing.T) {
	d := setupDB(t)
	registerTestUser(t, d)

	linked, err := OAuthSignIn(d, &OAuthIDClaims{
		Issuer:  "accounts.google.com",
		Subject: "google-sub-2",
		Email:   "joe@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, LoginTypeBoth, linked.LoginType)
	assert.Equal(t, "google-sub-2", linked.OAuthSubject)
}

func TestUpdateProfilePartialMerge(t *testing.T) {
	d := setupDB(t)
	user := registerTestUser(t, d)

	bio := "grows tomatoes"
	updated, err := UpdateProfile(d, user.UUID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "grows tomatoes", updated.Bio)
	// Omitted fields keep their prior values.
	assert.Equal(t, user.Username, updated.Username)
	assert.Equal(t, user.Timezone, updated.Timezone)
}
