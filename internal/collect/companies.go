package collect

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type CompaniesFile struct {
	Companies []CompanyConfig `yaml:"companies"`
}

// CompanyConfig describes a tracked company and the competitors to watch.
type CompanyConfig struct {
	Key         string             `yaml:"key"`
	Name        string             `yaml:"name"`
	SearchTerms []string           `yaml:"search_terms"`
	Ticker      string             `yaml:"ticker"`
	Competitors []CompetitorConfig `yaml:"competitors"`
}

type CompetitorConfig struct {
	Name   string `yaml:"name"`
	Ticker string `yaml:"ticker"`
}

// UnmarshalYAML accepts either a bare competitor name or a mapping.
func (c *CompetitorConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}

	type plain CompetitorConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = CompetitorConfig(p)
	return nil
}

// LoadCompanies reads and validates a companies YAML file.
func LoadCompanies(path string) ([]CompanyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading companies file: %w", err)
	}
	return parseCompanies(data)
}

func parseCompanies(data []byte) ([]CompanyConfig, error) {
	var file CompaniesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing companies file: %w", err)
	}

	if len(file.Companies) == 0 {
		return nil, fmt.Errorf("companies file lists no companies")
	}

	seen := make(map[string]bool)
	for i := range file.Companies {
		c := &file.Companies[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("company %d: name is required", i+1)
		}
		if c.Key == "" {
			c.Key = slug(c.Name)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("company %q: duplicate key %q", c.Name, c.Key)
		}
		seen[c.Key] = true

		if len(c.SearchTerms) == 0 {
			c.SearchTerms = []string{c.Name}
		}
		for j, comp := range c.Competitors {
			if strings.TrimSpace(comp.Name) == "" {
				return nil, fmt.Errorf("company %q: competitor %d has no name", c.Name, j+1)
			}
		}
	}

	return file.Companies, nil
}

func slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "_")
}
