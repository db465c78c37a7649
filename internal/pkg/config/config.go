package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort     = 8068
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = time.Minute
)

// Config is the assembled runtime configuration.
type Config struct {
	Devices          []DeviceConfig
	DatabaseURL      string
	MigrationsFolder string
	Mqtt             *MqttConfig
	PollInterval     time.Duration
	LogLevel         string
	Verbose          bool
}

// MqttConfig is optional; no host disables the MQTT sink.
type MqttConfig struct {
	Host     string
	Username string
	Password string
}

// DeviceConfig identifies one thermostat. Immutable once loaded.
type DeviceConfig struct {
	Name    string        `yaml:"name"`
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Pin     uint16        `yaml:"pin"`
	Timeout time.Duration `yaml:"timeout"`
}

type deviceFile struct {
	Devices []DeviceConfig `yaml:"devices"`
}

// LoadDevices reads the yaml device list, applies defaults and validates it.
func LoadDevices(path string) ([]DeviceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file deviceFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(file.Devices) == 0 {
		return nil, errors.New("config: at least one device required")
	}

	seen := map[string]bool{}
	for i := range file.Devices {
		d := &file.Devices[i]
		normalize(d)
		if err := validate(d); err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("config: duplicate device name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return file.Devices, nil
}

func normalize(d *DeviceConfig) {
	if d.Name == "" {
		d.Name = d.Host
	}
	if d.Port == 0 {
		d.Port = DefaultPort
	}
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
}

func validate(d *DeviceConfig) error {
	if d.Host == "" {
		return errors.New("config: device host required")
	}
	if d.Port < 1 || d.Port > 0xFFFF {
		return fmt.Errorf("config: device %s: port %d out of range", d.Name, d.Port)
	}
	// The access code is four decimal digits.
	if d.Pin > 9999 {
		return fmt.Errorf("config: device %s: pin %d is not a 4-digit code", d.Name, d.Pin)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("config: device %s: negative timeout", d.Name)
	}
	return nil
}
