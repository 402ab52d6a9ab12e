package entities

import "time"

// Favorite is a user's saved flight (GORM)
type Favorite struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;index" json:"userId"`
	FlightID     string    `gorm:"column:flight_id" json:"flightId"`
	FlightNumber string    `gorm:"column:flight_number" json:"flightNumber"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}
