package repository

import (
	"context"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface with
// a short-lived in-process cache in front of the reference table.
type GormAirportRepository struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db:    db,
		cache: gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID          uint   `gorm:"primaryKey"`
	AirportCode string `gorm:"column:airport_code;uniqueIndex"`
	AirportName string `gorm:"column:airport_name"`
	CityName    string `gorm:"column:city_name"`
	CountryName string `gorm:"column:country_name"`
	TzName      string `gorm:"column:tz_name"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// GetByCode finds an airport by IATA code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	if cached, found := r.cache.Get(code); found {
		return cached.(*entity.Airport), nil
	}

	var airport Airports
	result := r.db.WithContext(ctx).Where("airport_code = ?", code).First(&airport)
	if result.Error != nil {
		return nil, result.Error
	}

	found := &entity.Airport{
		ID:          airport.ID,
		AirportCode: airport.AirportCode,
		AirportName: airport.AirportName,
		CityName:    airport.CityName,
		CountryName: airport.CountryName,
		TzName:      airport.TzName,
		CreatedAt:   airport.CreatedAt,
		UpdatedAt:   airport.UpdatedAt,
		DeletedAt:   airport.DeletedAt,
	}
	r.cache.Set(code, found, gocache.DefaultExpiration)
	return found, nil
}
