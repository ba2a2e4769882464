package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"              json:"userId"`
	Username     string    `gorm:"uniqueIndex;size:60;not null"    json:"username"`
	Email        string    `gorm:"size:254;not null"               json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	ForceRelogin bool      `gorm:"not null;default:false"          json:"-"`
	Roles        []Role    `gorm:"many2many:user_roles"            json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name string `gorm:"uniqueIndex;size:32;not null" json:"name"`
}

// UserRole is the join row behind User.Roles.
type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	RoleID uint   `gorm:"primaryKey;autoIncrement:false"`
}

func (UserRole) TableName() string { return "user_roles" }

const (
	EntityCountry = "country"
	EntityCity    = "city"
	EntityPlace   = "place"
)

type Country struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"size:60;not null"          json:"name"`
	Description string    `gorm:"size:350;not null"         json:"description"`
	UserID      string    `gorm:"size:36;index;not null"    json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type City struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"size:60;not null"          json:"name"`
	Description string    `gorm:"size:350;not null"         json:"description"`
	Latitude    float64   `gorm:"not null"                  json:"latitude"`
	Longitude   float64   `gorm:"not null"                  json:"longitude"`
	CountryID   uint      `gorm:"index;not null"            json:"countryId"`
	UserID      string    `gorm:"size:36;index;not null"    json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Place struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"size:60;not null"          json:"name"`
	Description string    `gorm:"size:350;not null"         json:"description"`
	CityID      uint      `gorm:"index;not null"            json:"cityId"`
	UserID      string    `gorm:"size:36;index;not null"    json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Comment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	Content    string    `gorm:"size:350;not null"                       json:"content"`
	EntityType string    `gorm:"size:16;not null;index:idx_comment_entity" json:"entityType"`
	EntityID   uint      `gorm:"not null;index:idx_comment_entity"       json:"entityId"`
	UserID     string    `gorm:"size:36;index;not null"                  json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Migrate creates or updates every table the forum uses.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&User{}, "Roles", &UserRole{}); err != nil {
		return err
	}
	return db.AutoMigrate(&User{}, &Role{}, &UserRole{}, &Country{}, &City{}, &Place{}, &Comment{})
}
