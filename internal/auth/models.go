package auth

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	LoginTypePassword = "password"
	LoginTypeOAuth    = "oauth"
	LoginTypeBoth     = "both"
)

// Lockout policy: after MaxFailedLogins consecutive failures the account is
// locked for LockoutDuration. A successful login resets the counter.
const (
	MaxFailedLogins = 5
	LockoutDuration = 30 * time.Minute
)

type User struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	Username       string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email          string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"size:255" json:"-"`
	Role           string `gorm:"size:50;not null;default:'user'" json:"role"`
	LoginType      string `gorm:"size:20;not null;default:'password'" json:"login_type"`
	OAuthSubject   string `gorm:"size:255;index" json:"-"`

	FirstName   string `gorm:"size:50" json:"first_name"`
	LastName    string `gorm:"size:50" json:"last_name"`
	FullName    string `gorm:"size:100" json:"full_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `gorm:"size:255" json:"avatar_url"`
	PhoneNumber string `gorm:"size:20" json:"phone_number"`

	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	AccountLockedUntil  *time.Time `json:"-"`
	LastLogin           *time.Time `json:"last_login"`

	Timezone string `gorm:"size:50;default:'UTC'" json:"timezone"`
	Language string `gorm:"size:10;default:'en'" json:"language"`
	Theme    string `gorm:"size:20;default:'light'" json:"theme"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsLocked reports whether the lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && now.Before(*u.AccountLockedUntil)
}

// RegisterFailedLogin bumps the failure counter and opens the lockout window
// once the threshold is reached.
func (u *User) RegisterFailedLogin(now time.Time) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLogins {
		until := now.Add(LockoutDuration)
		u.AccountLockedUntil = &until
	}
}

// ResetFailedLogins clears the counter and the lockout window.
func (u *User) ResetFailedLogins() {
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
}
