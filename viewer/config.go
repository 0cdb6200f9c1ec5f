// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package viewer

import (
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	"github.com/gviegas/modelview/camera"
	"github.com/gviegas/modelview/render"
)

const (
	dflFOV        = 75
	dflNear       = 0.1
	dflFar        = 1000
	dflTargetSize = 3
	dflExposure   = 1
	dflIntensity  = 3
)

// Config is used to configure a Viewer.
type Config struct {
	// Vertical field of view of the camera, in
	// degrees.
	//
	// Default is 75.
	FOV float32 `toml:"fov"`

	// Near and far clip planes.
	//
	// Default is 0.1 and 1000.
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`

	// Initial position of the camera, which looks
	// at the origin.
	//
	// Default is [0, 2, 5].
	CameraPosition [3]float32 `toml:"camera_position"`

	// Damping factor of the orbit controls.
	//
	// Default is 0.05.
	Damping float32 `toml:"damping"`

	// Tone mapping operator: "none", "linear",
	// "reinhard" or "aces".
	//
	// Default is "aces".
	ToneMapping string `toml:"tone_mapping"`

	// Tone mapping exposure.
	//
	// Default is 1.
	Exposure float32 `toml:"exposure"`

	// Size of shadow maps.
	//
	// Default is 2048.
	ShadowMapSize int `toml:"shadow_map_size"`

	// Size of the largest extent of loaded models.
	//
	// Default is 3.
	TargetSize float32 `toml:"target_size"`

	// The directional light.
	Light LightConfig `toml:"light"`
}

// LightConfig configures the directional light.
type LightConfig struct {
	// Direction in which light travels.
	//
	// Default is [-5, -10, -7.5] (normalized).
	Direction [3]float32 `toml:"direction"`

	// Default is 3.
	Intensity float32 `toml:"intensity"`

	// Default is [1, 1, 1].
	Color [3]float32 `toml:"color"`

	// Default is true.
	CastShadow bool `toml:"cast_shadow"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FOV:            dflFOV,
		Near:           dflNear,
		Far:            dflFar,
		CameraPosition: [3]float32{0, 2, 5},
		Damping:        camera.DefaultDamping,
		ToneMapping:    render.ACESFilmic.String(),
		Exposure:       dflExposure,
		ShadowMapSize:  render.DefaultShadowMapSize,
		TargetSize:     dflTargetSize,
		Light: LightConfig{
			Direction:  [3]float32{-5, -10, -7.5},
			Intensity:  dflIntensity,
			Color:      [3]float32{1, 1, 1},
			CastShadow: true,
		},
	}
}

// LoadConfig reads a TOML configuration file.
// Settings absent from the file keep their default
// values.
func LoadConfig(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig reads a TOML configuration from r.
// Unknown settings are an error.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, cfg.Validate()
}

func newCfgErr(reason string) error { return fmt.Errorf("%w: %s", ErrConfig, reason) }

func finite(xs ...float32) bool {
	for _, x := range xs {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Validate checks that the settings of c are in range.
func (c *Config) Validate() error {
	switch {
	case !finite(c.FOV, c.Near, c.Far, c.Damping, c.Exposure, c.TargetSize, c.Light.Intensity):
		return newCfgErr("non-finite setting")
	case !finite(c.CameraPosition[:]...) || !finite(c.Light.Direction[:]...) || !finite(c.Light.Color[:]...):
		return newCfgErr("non-finite vector setting")
	case c.FOV <= 0 || c.FOV >= 180:
		return newCfgErr("FOV outside (0, 180) interval")
	case c.Near <= 0 || c.Far <= c.Near:
		return newCfgErr("invalid clip planes")
	case c.Damping < 0 || c.Damping > 1:
		return newCfgErr("Damping outside [0, 1] interval")
	case c.Exposure < 0:
		return newCfgErr("Exposure less than 0")
	case c.ShadowMapSize <= 0:
		return newCfgErr("ShadowMapSize not positive")
	case c.TargetSize <= 0:
		return newCfgErr("TargetSize not positive")
	case c.Light.Intensity < 0:
		return newCfgErr("Light.Intensity less than 0")
	case c.Light.Direction == [3]float32{}:
		return newCfgErr("zero Light.Direction")
	case c.CameraPosition == [3]float32{}:
		return newCfgErr("CameraPosition at the origin")
	}
	if _, err := render.ParseToneMapping(c.ToneMapping); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}
