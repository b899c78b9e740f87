package plans

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

const builtinFile = "builtin/run_walk.yaml"

type planFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadBuiltin returns the catalog bundled with the binary.
func LoadBuiltin() (*Catalog, error) {
	data, err := builtinFS.ReadFile(builtinFile)
	if err != nil {
		return nil, fmt.Errorf("read builtin plans: %w", err)
	}
	plans, err := parsePlans(data, "builtin")
	if err != nil {
		return nil, fmt.Errorf("parse builtin plans: %w", err)
	}
	return NewCatalog(plans)
}

// LoadFile reads plans from a YAML file. The plans are validated but not
// merged; see Catalog.Merge.
func LoadFile(path string) ([]Plan, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("plans path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans %s: %w", path, err)
	}
	plans, err := parsePlans(data, path)
	if err != nil {
		return nil, fmt.Errorf("parse plans %s: %w", path, err)
	}
	return plans, nil
}

// Load returns the builtin catalog, merged with the plans in path when set.
func Load(path string) (*Catalog, error) {
	catalog, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return catalog, nil
	}
	overrides, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(overrides)
}

func parsePlans(data []byte, source string) ([]Plan, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("no plans defined")
	}
	for i := range file.Plans {
		plan := &file.Plans[i]
		plan.Key = strings.TrimSpace(plan.Key)
		plan.Name = strings.TrimSpace(plan.Name)
		plan.Source = source
		for j := range plan.Phases {
			phase := &plan.Phases[j]
			phase.Name = strings.TrimSpace(phase.Name)
			phase.Kind = Kind(strings.ToLower(strings.TrimSpace(string(phase.Kind))))
		}
		if err := plan.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Plans, nil
}
