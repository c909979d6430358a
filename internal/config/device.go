package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DeviceSettings are the typed per-device options carried in the free-form
// parameter map of a device descriptor.
type DeviceSettings struct {
	Locale      string   `mapstructure:"locale"`
	ErrorSounds []string `mapstructure:"error_sounds"`
	AudioOutput string   `mapstructure:"audio_output"`
	Kiosk       bool     `mapstructure:"kiosk"`
}

// DecodeDeviceSettings decodes a descriptor's parameter map. Unknown keys are
// ignored; values are weakly typed ("true", "a,b" and friends decode into
// bools and slices).
func DecodeDeviceSettings(parameters map[string]string) (DeviceSettings, error) {
	var settings DeviceSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return DeviceSettings{}, fmt.Errorf("build device settings decoder: %w", err)
	}
	if err := decoder.Decode(parameters); err != nil {
		return DeviceSettings{}, fmt.Errorf("decode device settings: %w", err)
	}
	return settings, nil
}
