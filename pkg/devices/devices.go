// Package devices loads the list of OpenKarotz robots to watch from a YAML or JSON file.
package devices

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultTimeout      = 10 * time.Second
)

// Device describes one robot entry in the devices file.
type Device struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Host                string `json:"host" yaml:"host"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`
	TimeoutSeconds      int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	Snapshots           bool   `json:"snapshots" yaml:"snapshots"`
	Enabled             *bool  `json:"enabled" yaml:"enabled"`
}

// IsEnabled reports whether the device is enabled; entries default to enabled.
func (d Device) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// PollInterval returns how often the device should be polled.
func (d Device) PollInterval() time.Duration {
	if d.PollIntervalSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

// Timeout returns the per-request timeout for the device.
func (d Device) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// Hostname returns the parsed device host.
func (d Device) Hostname() (karotz.Hostname, error) {
	return karotz.ParseHostname(d.Host)
}

// Registry is an immutable, validated set of devices.
type Registry struct {
	devices []Device
	idx     map[string]Device
}

type registryFile struct {
	Devices []Device `json:"devices" yaml:"devices"`
}

// Load reads and validates the devices file at path.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("devices file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open devices file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read devices file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes a devices document. ext selects the format (".yaml", ".yml", ".json");
// an empty ext tries each in turn.
func Parse(data []byte, ext string) (*Registry, error) {
	doc, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if len(doc.Devices) == 0 {
		return nil, errors.New("devices file contains no devices entries")
	}

	reg := &Registry{
		devices: make([]Device, 0, len(doc.Devices)),
		idx:     make(map[string]Device, len(doc.Devices)),
	}
	for i := range doc.Devices {
		d := sanitize(doc.Devices[i])
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("device[%d]: %w", i, err)
		}
		if _, exists := reg.idx[d.ID]; exists {
			return nil, fmt.Errorf("duplicate device id %q", d.ID)
		}
		reg.devices = append(reg.devices, d)
		reg.idx[d.ID] = d
	}
	return reg, nil
}

// All returns a copy of every configured device.
func (r *Registry) All() []Device {
	if r == nil || len(r.devices) == 0 {
		return nil
	}
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Enabled returns the enabled devices in file order.
func (r *Registry) Enabled() []Device {
	if r == nil {
		return nil
	}
	var out []Device
	for _, d := range r.devices {
		if d.IsEnabled() {
			out = append(out, d)
		}
	}
	return out
}

// ByID looks up a device by id.
func (r *Registry) ByID(id string) (Device, bool) {
	id = strings.TrimSpace(id)
	if r == nil || id == "" {
		return Device{}, false
	}
	d, ok := r.idx[id]
	return d, ok
}

type unmarshalFn func([]byte, any) error

func decode(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var doc registryFile
		if err := d.fn(data, &doc); err != nil {
			lastErr = fmt.Errorf("decode %s devices: %w", d.name, err)
			continue
		}
		return doc, nil
	}
	if lastErr != nil {
		return registryFile{}, lastErr
	}
	return registryFile{}, errors.New("devices file format not recognized (expected YAML or JSON)")
}

func sanitize(d Device) Device {
	d.ID = strings.TrimSpace(d.ID)
	d.Name = strings.TrimSpace(d.Name)
	d.Host = strings.TrimSpace(d.Host)
	if d.Name == "" {
		d.Name = d.ID
	}
	return d
}

func validate(d Device) error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.Host == "" {
		return fmt.Errorf("host is required for device %q", d.ID)
	}
	if _, err := karotz.ParseHostname(d.Host); err != nil {
		return fmt.Errorf("device %q: %w", d.ID, err)
	}
	if d.PollIntervalSeconds < 0 {
		return fmt.Errorf("poll_interval_seconds must not be negative for device %q", d.ID)
	}
	return nil
}
