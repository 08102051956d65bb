package repository

import (
	"context"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// GormAirlineRepository implements the AirlineRepository interface with
// a short-lived in-process cache in front of the reference table.
type GormAirlineRepository struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db:    db,
		cache: gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"column:code;uniqueIndex"`
	Name      string `gorm:"column:name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// GetByCode finds an airline by its two-letter code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	if cached, found := r.cache.Get(code); found {
		return cached.(*entity.Airline), nil
	}

	var airline Airlines
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&airline)
	if result.Error != nil {
		return nil, result.Error
	}

	found := &entity.Airline{
		ID:        airline.ID,
		Code:      airline.Code,
		Name:      airline.Name,
		CreatedAt: airline.CreatedAt,
		UpdatedAt: airline.UpdatedAt,
		DeletedAt: airline.DeletedAt,
	}
	r.cache.Set(code, found, gocache.DefaultExpiration)
	return found, nil
}
