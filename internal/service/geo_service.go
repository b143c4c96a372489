package service

import (
	"context"
	"fmt"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/validation"
)

// GeoService contains the lookup logic served by the dev backend
type GeoService struct {
	repo GeoRepository
}

// GeoRepository interface for dependency injection
type GeoRepository interface {
	FindByIP(ctx context.Context, ip string) (*models.GeoRecord, error)
}

// NewGeoService creates a new geo service
func NewGeoService(repo GeoRepository) *GeoService {
	return &GeoService{repo: repo}
}

// Lookup validates ip and resolves it through the repository. A nil record
// with a nil error means the address is unknown.
func (s *GeoService) Lookup(ctx context.Context, ip string) (*models.GeoRecord, error) {
	if !validation.IsValidIP(ip) {
		return nil, fmt.Errorf("service: %w: %q", ErrInvalidIP, ip)
	}

	record, err := s.repo.FindByIP(ctx, ip)
	if err != nil {
		return nil, fmt.Errorf("service: failed to look up ip: %w", err)
	}

	return record, nil
}
