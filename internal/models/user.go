// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	FirstName      string     `json:"first_name" gorm:"size:100"`
	LastName       string     `json:"last_name" gorm:"size:100"`
	Phone          string     `json:"phone" gorm:"size:30"`
	Roles          RoleList   `json:"roles" gorm:"type:text;not null"`
	KYCLevel       KYCLevel   `json:"kyc_level" gorm:"type:varchar(20);default:'none'"`
	IsVerified     bool       `json:"is_verified" gorm:"default:false"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid;index"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	Organization   *Organization   `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Listings       []Listing       `json:"listings,omitempty" gorm:"foreignKey:SellerID"`
	AccessRequests []AccessRequest `json:"access_requests,omitempty" gorm:"foreignKey:BuyerID"`
	Notifications  []Notification  `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
	KYCDocuments   []KYCDocument   `json:"kyc_documents,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

type Organization struct {
	BaseModel
	Name string `json:"name" gorm:"size:255;not null"`

	// Relationships
	Members []User `json:"members,omitempty" gorm:"foreignKey:OrganizationID"`
}
