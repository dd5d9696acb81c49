package odbc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources maps connection aliases to full ODBC connection strings. It is
// plain data: load it once at startup and share it read-only between
// workers, each of which resolves aliases through its own Pool.
type Sources map[string]string

// LoadSources reads an alias registry from a YAML file of the form:
//
//	sources:
//	  primary: "Driver=FreeTDS;SERVER=db1;PORT=1433;DATABASE=app;..."
//	  reporting: "Driver=FreeTDS;SERVER=db2;PORT=1433;DATABASE=bi;..."
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var doc struct {
		Sources map[string]string `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if len(doc.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	s := Sources(doc.Sources)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the registry for empty aliases or connection strings.
func (s Sources) Validate() error {
	for alias, connStr := range s {
		if alias == "" {
			return fmt.Errorf("sources registry contains an empty alias")
		}
		if connStr == "" {
			return fmt.Errorf("source %q has an empty connection string", alias)
		}
	}
	return nil
}

// Resolve returns the connection string registered under alias.
func (s Sources) Resolve(alias string) (string, error) {
	connStr, ok := s[alias]
	if !ok {
		return "", fmt.Errorf("alias %q is not registered", alias)
	}
	return connStr, nil
}
