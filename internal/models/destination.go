package models

import (
	"time"

	"gorm.io/gorm"
)

// Destination is a place the agency sells packages for
type Destination struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"type:varchar(255)" json:"name"`
	Country     string `gorm:"type:varchar(100)" json:"country"`
	Region      string `gorm:"type:varchar(100)" json:"region"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Packages []TourPackage `gorm:"foreignKey:DestinationID" json:"packages,omitempty"`
}
