package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airline is one row of the IATA airline reference table. Lookups key
// on the two-letter code; unknown codes fall back to rendering the bare
// code, never a guess.
type Airline struct {
	ID        uint
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
