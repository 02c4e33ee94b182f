package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration of a run.
type File struct {
	Queries  []string `yaml:"queries"`
	Market   string   `yaml:"market"`
	MaxPages int      `yaml:"max_pages"`
}

// LoadFile reads the configuration file at path.
func LoadFile(path string) (File, error) {
	bts, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err = yaml.Unmarshal(bts, &f); err != nil {
		return File{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	if f.MaxPages < 0 {
		return File{}, fmt.Errorf("max_pages must not be negative, got %d", f.MaxPages)
	}

	return f, nil
}

// mergeQueries joins query lists keeping the first occurrence of each
// query and dropping blank ones.
func mergeQueries(lists ...[]string) []string {
	all := lo.Flatten(lists)
	all = lo.Map(all, func(q string, _ int) string { return strings.TrimSpace(q) })
	all = lo.Filter(all, func(q string, _ int) bool { return q != "" })
	return lo.Uniq(all)
}
