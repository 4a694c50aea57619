package models

import "time"

// ResultCategory is the traffic-light outcome of a quiz.
type ResultCategory string

const (
	CategoryVerde    ResultCategory = "verde"
	CategoryAmarillo ResultCategory = "amarillo"
	CategoryRojo     ResultCategory = "rojo"
)

// ResultCategories lists the categories in reporting order.
var ResultCategories = []ResultCategory{CategoryVerde, CategoryAmarillo, CategoryRojo}

// Valid reports whether c is a known category.
func (c ResultCategory) Valid() bool {
	switch c {
	case CategoryVerde, CategoryAmarillo, CategoryRojo:
		return true
	}
	return false
}

// Result is one submitted quiz outcome. It is never updated or deleted.
type Result struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	DeviceID       *string        `gorm:"size:255;index" json:"device_id"`
	UserID         *uint          `gorm:"index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	AgeRange       string         `gorm:"size:64;not null" json:"age_range"`
	Gender         string         `gorm:"size:64" json:"gender"`
	UserRole       string         `gorm:"size:64;not null;index" json:"user_role"`
	ScreenTime     string         `gorm:"size:64" json:"screen_time"`
	FinalScore     int            `gorm:"not null;default:0" json:"final_score"`
	ResultCategory ResultCategory `gorm:"size:16;not null;index" json:"result_category"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TableName keeps the table name used by the existing deployment.
func (Result) TableName() string {
	return "test_results"
}
