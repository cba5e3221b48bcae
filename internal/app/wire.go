//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/tair/pos-core/internal/config"
)

// InitializeApp builds the service with all dependencies
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		InfrastructureSet,
		CoreSet,
		DeliverySet,
		NewApp,
	)
	return nil, nil, nil
}
