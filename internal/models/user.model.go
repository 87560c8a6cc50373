package models

import (
	"time"

	"doacin/internal/eligibility"

	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	Name            string          `gorm:"type:varchar(255);not null"                           json:"name"`
	Email           string          `gorm:"type:varchar(255);not null;uniqueIndex"               json:"email"`
	NationalID      string          `gorm:"column:national_id;type:varchar(32);not null;uniqueIndex" json:"nationalId"`
	PasswordHash    string          `gorm:"type:varchar(255);not null"                           json:"-"`
	Phone           *string         `gorm:"type:varchar(32)"                                     json:"phone"`
	Sex             eligibility.Sex `gorm:"type:varchar(16)"                                     json:"sex"`
	BirthDate       *time.Time      `                                                            json:"birthDate"`
	Weight          *float64        `                                                            json:"weight"`
	BloodType       *string         `gorm:"type:varchar(8)"                                      json:"bloodType"`
	IsAdmin         bool            `gorm:"not null"                                             json:"isAdmin"`
	ExternalCapibas int             `gorm:"not null"                                             json:"externalCapibas"`
	Donations       []Donation      `gorm:"foreignKey:UserID"                                    json:"-"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.BirthDate = utcPtr(u.BirthDate)
	return u.BaseUUIDModel.BeforeSave(tx)
}

var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodType(value string) bool {
	for _, bloodType := range BloodTypes {
		if value == bloodType {
			return true
		}
	}
	return false
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"nationalId"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest leaves nil fields untouched.
type UpdateProfileRequest struct {
	Phone     *string    `json:"phone"`
	BirthDate *string    `json:"birthDate"`
	BloodType *string    `json:"bloodType"`
	Weight    *FlexFloat `json:"weight"`
	Sex       *string    `json:"sex"`
}

type SyncCapibasRequest struct {
	AccessToken string `json:"accessToken"`
}
