package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	PhoneNumber string `json:"phone_number"`
	Timezone    string `json:"timezone"`
	Language    string `json:"language"`
	Theme       string `json:"theme"`
}

// Register validates the input, hashes the password and creates the account.
// Role is always "user"; admin accounts are provisioned out of band.
func Register(tx *gorm.DB, in RegisterInput) (*User, error) {
	username, err := ValidateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidateStrongPassword(in.Password); err != nil {
		return nil, err
	}
	if in.PhoneNumber != "" {
		if in.PhoneNumber, err = ValidatePhoneNumber(in.PhoneNumber); err != nil {
			return nil, err
		}
	}
	if in.FirstName != "" {
		if in.FirstName, err = ValidateName(in.FirstName); err != nil {
			return nil, err
		}
	}
	if in.LastName != "" {
		if in.LastName, err = ValidateName(in.LastName); err != nil {
			return nil, err
		}
	}

	var count int64
	if err := tx.Model(&User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if count > 0 {
		return nil, apperror.Invalid("username", "username or email already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := User{
		UUID:           uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
		Role:           RoleUser,
		LoginType:      LoginTypePassword,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		FullName:       strings.TrimSpace(in.FirstName + " " + in.LastName),
		Bio:            in.Bio,
		AvatarURL:      in.AvatarURL,
		PhoneNumber:    in.PhoneNumber,
		IsActive:       true,
		Timezone:       defaultString(in.Timezone, "UTC"),
		Language:       defaultString(in.Language, "en"),
		Theme:          defaultString(in.Theme, "light"),
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

// Login authenticates by username or email. Failures and lockouts are
// reported through the same Unauthorized sentinel; the lockout message is
// distinct so a locked user knows to wait.
func Login(tx *gorm.DB, identifier, password string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperror.Invalid("username", "username and password are required")
	}

	var user User
	err := tx.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("incorrect credentials")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, apperror.Unauthorized("account is temporarily locked")
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("account is inactive")
	}
	if user.LoginType == LoginTypeOAuth {
		return nil, apperror.Unauthorized("incorrect credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		user.RegisterFailedLogin(now)
		if err := tx.Model(&user).Select("failed_login_attempts", "account_locked_until").
			Updates(&user).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		return nil, apperror.Unauthorized("incorrect credentials")
	}

	user.ResetFailedLogins()
	user.LastLogin = &now
	if err := tx.Model(&user).
		Select("failed_login_attempts", "account_locked_until", "last_login").
		Updates(&user).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

// OAuthSignIn signs a user in from a decoded provider ID token, creating the
// account on first contact or linking the provider subject to an existing
// account with the same email.
func OAuthSignIn(tx *gorm.DB, claims *OAuthIDClaims) (*User, error) {
	if claims.Subject == "" || claims.Email == "" {
		return nil, apperror.Invalid("id_token", "token is missing required claims")
	}
	now := time.Now()

	var user User
	err := tx.Where("o_auth_subject = ?", claims.Subject).First(&user).Error
	if err == nil {
		user.LastLogin = &now
		if err := tx.Model(&user).Select("last_login").Updates(&user).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err)
	}

	email, emailErr := ValidateEmail(claims.Email)
	if emailErr != nil {
		return nil, emailErr
	}

	err = tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.OAuthSubject != "" {
			return nil, apperror.Invalid("id_token", "email already associated with another account")
		}
		user.OAuthSubject = claims.Subject
		user.IsVerified = true
		user.LastLogin = &now
		if user.HashedPassword != "" {
			user.LoginType = LoginTypeBoth
		} else {
			user.LoginType = LoginTypeOAuth
		}
		if err := tx.Model(&user).
			Select("o_auth_subject", "is_verified", "last_login", "login_type").
			Updates(&user).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err)
	}

	username := claims.Name
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	user = User{
		UUID:         uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         RoleUser,
		LoginType:    LoginTypeOAuth,
		OAuthSubject: claims.Subject,
		FirstName:    claims.GivenName,
		LastName:     claims.FamilyName,
		FullName:     claims.Name,
		AvatarURL:    claims.Picture,
		IsActive:     true,
		IsVerified:   claims.EmailVerified,
		LastLogin:    &now,
		Timezone:     "UTC",
		Language:     "en",
		Theme:        "light",
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

// GetByUUID loads a user by external identifier.
func GetByUUID(tx *gorm.DB, userUUID string) (*User, error) {
	var user User
	err := tx.Where("uuid = ?", userUUID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

type ProfileUpdate struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	PhoneNumber *string `json:"phone_number"`
	Timezone    *string `json:"timezone"`
	Language    *string `json:"language"`
	Theme       *string `json:"theme"`
}

// UpdateProfile merges only the supplied fields; omitted fields keep their
// prior value.
func UpdateProfile(tx *gorm.DB, userUUID string, in ProfileUpdate) (*User, error) {
	user, err := GetByUUID(tx, userUUID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		if user.FirstName, err = ValidateName(*in.FirstName); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		if user.LastName, err = ValidateName(*in.LastName); err != nil {
			return nil, err
		}
	}
	if in.PhoneNumber != nil {
		if user.PhoneNumber, err = ValidatePhoneNumber(*in.PhoneNumber); err != nil {
			return nil, err
		}
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.Timezone != nil {
		user.Timezone = *in.Timezone
	}
	if in.Language != nil {
		user.Language = *in.Language
	}
	if in.Theme != nil {
		user.Theme = *in.Theme
	}
	user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)

	if err := tx.Save(user).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
