package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountStatus is the lifecycle state of an account
type AccountStatus string

const (
	StatusInactive  AccountStatus = "inactive"  // registered, email not confirmed yet
	StatusActive    AccountStatus = "active"    // full access
	StatusSuspended AccountStatus = "suspended" // read-only access
)

// VerificationType tells which flow a pending verify code belongs to
type VerificationType string

const (
	VerifyRegister       VerificationType = "register"
	VerifyForgotPassword VerificationType = "forgot_password"
	VerifyChangePassword VerificationType = "change_password"
)

// Account represents a registered user of the platform
type Account struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// Profile data
	Bio         string     `gorm:"type:text" json:"bio"`
	AvatarLink  string     `json:"avatarLink"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Language    string     `gorm:"default:en" json:"language"`

	Status AccountStatus `gorm:"type:varchar(20);default:inactive;index" json:"status"`

	// Email verification / password recovery
	VerifyCode       string           `gorm:"type:text" json:"-"`
	VerifyCodeExpiry *time.Time       `json:"-"`
	VerifyType       VerificationType `gorm:"type:varchar(20)" json:"-"`

	// Session tokens. The refresh token is opaque, its expiry is tracked server-side.
	AccessToken        string     `gorm:"type:text" json:"-"`
	RefreshToken       string     `gorm:"type:text;index" json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`

	// Scheduled account removal. Login cancels it.
	SelfRemoveTime *time.Time `gorm:"index" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Soft delete. Deliberately a plain pointer so deleted rows stay
	// addressable by default queries; predicates are explicit.
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// Follow is a directed edge: AccountID follows FollowingID
type Follow struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID   string  `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"accountId"`
	Account     Account `gorm:"foreignKey:AccountID" json:"-"`
	FollowingID string  `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followingId"`
	Following   Account `gorm:"foreignKey:FollowingID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
