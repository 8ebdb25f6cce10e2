package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type MapsConfig struct {
	APIKey string `env:"GOOGLE_MAPS_API_KEY,required,notEmpty"`

	// Addresses closer than this many meters count as "within
	// threshold" for the distance check.
	ProximityThresholdMeters float64 `env:"PROXIMITY_THRESHOLD_METERS" envDefault:"500"`
}

func NewMapsConfig(ctx context.Context) *MapsConfig {
	c := &MapsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Maps config")
	}
	return c
}
