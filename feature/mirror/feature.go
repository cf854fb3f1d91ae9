package mirror

import (
	"calendar-sync/core/loader"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature exposes the sync routes through the loader.
type Feature struct {
	service *Service
	logger  *zap.Logger
}

var _ loader.Feature = (*Feature)(nil)

// NewFeature creates the sync feature.
func NewFeature(service *Service, logger *zap.Logger) *Feature {
	return &Feature{service: service, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.logger).RegisterRoutes(app)
	return nil
}
