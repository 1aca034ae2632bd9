package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Site is one monitored gauge in the YAML roster.
type Site struct {
	Site   string  `yaml:"site"`    // USGS site number
	Name   string  `yaml:"name"`    // display name
	River  string  `yaml:"river"`   // river the gauge sits on
	MaxCFS float64 `yaml:"max_cfs"` // optional per-site gauge ceiling
}

type sitesFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadSites reads the monitored-site roster from a YAML file.
func LoadSites(path string) ([]Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file %s: %w", path, err)
	}

	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sites file %s: %w", path, err)
	}

	for i, s := range f.Sites {
		if s.Site == "" {
			return nil, fmt.Errorf("sites file %s: entry %d is missing a site number", path, i)
		}
		if s.MaxCFS < 0 {
			return nil, fmt.Errorf("sites file %s: site %s has a negative max_cfs", path, s.Site)
		}
	}

	return f.Sites, nil
}
