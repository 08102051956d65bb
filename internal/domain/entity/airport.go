package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport is one row of the IATA airport reference table. TzName holds
// the IANA zone used to anchor departure instants; CityName feeds the
// normalized leg's city fields.
type Airport struct {
	ID          uint
	AirportCode string
	AirportName string
	CityName    string
	CountryName string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}
