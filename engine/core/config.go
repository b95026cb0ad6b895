package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level           string `toml:"level"`
	Prefix          string `toml:"prefix"`
	ReportCaller    bool   `toml:"report_caller"`
	ReportTimestamp bool   `toml:"report_timestamp"`
}

type RendererConfig struct {
	// Name reported to the driver in VkApplicationInfo.
	ApplicationName string `toml:"application_name"`
	// Enables VK_LAYER_KHRONOS_validation when creating the instance.
	Validation bool `toml:"validation"`
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Renderer RendererConfig `toml:"renderer"`
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:           "info",
			Prefix:          defaultLogPrefix,
			ReportCaller:    true,
			ReportTimestamp: true,
		},
		Renderer: RendererConfig{
			ApplicationName: "vklayout",
			Validation:      false,
		},
	}
}

// ParseConfig decodes a TOML document on top of DefaultConfig, so missing
// keys keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}
