package main

import (
	"strings"

	"dcpkit/internal/audio"
	"dcpkit/internal/config"
	"dcpkit/internal/services"
)

// editRate resolves the frame rate from override, falling back to
// conversion.frame_rate.
func editRate(cfg *config.Config, override string) (audio.EditRate, error) {
	value := cfg.Conversion.FrameRate
	if strings.TrimSpace(override) != "" {
		value = override
	}
	num, den, err := config.ParseFrameRate(value)
	if err != nil {
		return audio.EditRate{}, services.Wrap(services.ErrValidation, "cli", "frame rate", "", err)
	}
	return audio.EditRate{Numerator: num, Denominator: den}, nil
}
