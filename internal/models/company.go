package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Company struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	Name        string `gorm:"type:varchar(160);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `gorm:"type:varchar(200)" json:"website"`
	Location    string `gorm:"type:varchar(120)" json:"location"`
	LogoURL     string `gorm:"type:text" json:"logo_url"`

	// Accessibility facilities the company provides, e.g. ["wheelchair_access"]
	Facilities datatypes.JSON `gorm:"type:jsonb" json:"facilities"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
