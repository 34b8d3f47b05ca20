// Package blocklist loads competitor-name blocklists from YAML files.
package blocklist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/helixml/citetrack/domain/opportunity"
)

// File is the on-disk blocklist format.
//
//	names:
//	  - none
//	  - "n/a"
//	replace_defaults: false
type File struct {
	Names           []string `yaml:"names"`
	ReplaceDefaults bool     `yaml:"replace_defaults"`
}

// Parse builds a blocklist from YAML. Names extend the default blocklist
// unless replace_defaults is set.
func Parse(data []byte) (opportunity.NameBlocklist, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return opportunity.NameBlocklist{}, fmt.Errorf("parse blocklist: %w", err)
	}
	if f.ReplaceDefaults {
		return opportunity.NewNameBlocklist(f.Names...), nil
	}
	return opportunity.DefaultBlocklist().With(f.Names...), nil
}

// Load reads a blocklist file. An empty path returns the default blocklist.
func Load(path string) (opportunity.NameBlocklist, error) {
	if path == "" {
		return opportunity.DefaultBlocklist(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opportunity.NameBlocklist{}, fmt.Errorf("read blocklist %s: %w", path, err)
	}
	return Parse(data)
}
