package domain

import (
	"context"
	"time"
)

// Service is a purchasable offering. Rows are never removed; deactivation
// clears Active.
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"` // minutes
	Active      bool      `gorm:"column:is_active;not null;default:true;index" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Service) TableName() string { return "services" }

// NewService is the create payload. Nothing is validated beyond what the
// store enforces.
type NewService struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
}

// ServicePatch is the update payload; a nil field was absent (or null) in
// the request.
type ServicePatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Duration    *int     `json:"duration"`
	Active      *bool    `json:"isActive"`
}

// Apply merges p into s. Name, description, price and duration only change
// when supplied with a non-zero value, so "" and 0 keep what is stored.
// Active changes whenever it is supplied, false included.
func (p ServicePatch) Apply(s *Service) {
	if p.Name != nil && *p.Name != "" {
		s.Name = *p.Name
	}
	if p.Description != nil && *p.Description != "" {
		s.Description = *p.Description
	}
	if p.Price != nil && *p.Price != 0 {
		s.Price = *p.Price
	}
	if p.Duration != nil && *p.Duration != 0 {
		s.Duration = *p.Duration
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

// ServiceRepository lookups return (nil, nil) when no row matches.
type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	FindByID(ctx context.Context, id uint) (*Service, error)
	// ListActive returns active services ordered by id ascending.
	ListActive(ctx context.Context) ([]Service, error)
	Save(ctx context.Context, s *Service) error
}
