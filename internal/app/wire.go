//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"podbrief/internal/config"
)

// InitializeApp wires the whole application from configuration.
func InitializeApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(CoreSet, APISet, wire.Struct(new(App), "*"))
	return nil, nil, nil
}
