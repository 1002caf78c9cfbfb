package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emberops/wildfire/core/model"
)

// ResourceSpec is the on-disk representation of one resource kind.
type ResourceSpec struct {
	Name              string  `json:"name" yaml:"name"`
	DeploymentMinutes int     `json:"deployment_minutes" yaml:"deployment_minutes"`
	Cost              float64 `json:"cost" yaml:"cost"`
	Units             int     `json:"units" yaml:"units"`
	Priority          int     `json:"priority" yaml:"priority"`
}

// Config is the serializable catalog configuration. An empty config selects
// the default catalog.
type Config struct {
	Path        string             `json:"path" yaml:"path"`
	Resources   []ResourceSpec     `json:"resources" yaml:"resources"`
	DamageCosts map[string]float64 `json:"damage_costs" yaml:"damage_costs"`
}

// Build constructs a catalog from the configuration. Inline resources take
// precedence; otherwise Path is loaded; otherwise the default catalog is used.
func (c Config) Build() (*Catalog, error) {
	if len(c.Resources) > 0 {
		return fromSpecs(c.Resources, c.DamageCosts)
	}
	if c.Path != "" {
		return LoadFile(c.Path)
	}
	return Default(), nil
}

// LoadFile reads a catalog definition from a JSON or YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads a catalog definition from r in the given format.
func Decode(r io.Reader, format string) (*Catalog, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}
	return fromSpecs(cfg.Resources, cfg.DamageCosts)
}

func fromSpecs(specs []ResourceSpec, damage map[string]float64) (*Catalog, error) {
	resources := make([]Resource, 0, len(specs))
	for _, s := range specs {
		resources = append(resources, Resource{
			Name:       s.Name,
			DeployTime: time.Duration(s.DeploymentMinutes) * time.Minute,
			Cost:       s.Cost,
			Units:      s.Units,
			Priority:   s.Priority,
		})
	}
	dmg := make(map[model.Severity]float64, len(damage))
	for name, cost := range damage {
		sev, err := model.ParseSeverity(name)
		if err != nil {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("damage cost for unknown severity %q", name)}
		}
		dmg[sev] = cost
	}
	return New(resources, dmg)
}
