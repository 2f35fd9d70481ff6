package configparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml exports the yaml file into the environment and then fills cfg
// from its env/default tags. A missing file is not an error: env and defaults still apply.
func LoadAndParseYaml(path string, cfg any) error {
	if err := LoadYamlFile(path); err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrNoFilePath) {
		return err
	}
	return Parse(cfg)
}

// LoadYamlFile flattens nested keys into SECTION_KEY variables and sets the ones not
// already present in the environment. Values of the form ${VAR:-default} are expanded.
func LoadYamlFile(path string) error {
	if path == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read YAML file: %w", err)
	}

	var root yaml.MapSlice
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("could not parse YAML file: %w", err)
	}

	vars := make(map[string]string)
	flatten(nil, root, vars)

	for key, value := range vars {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

func flatten(prefix []string, node yaml.MapSlice, out map[string]string) {
	for _, item := range node {
		key := fmt.Sprint(item.Key)
		path := append(append([]string{}, prefix...), key)

		switch v := item.Value.(type) {
		case yaml.MapSlice:
			flatten(path, v, out)
		case nil:
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			out[envName(path)] = strings.Join(parts, ",")
		default:
			out[envName(path)] = expand(fmt.Sprint(v))
		}
	}
}

func envName(path []string) string {
	return strings.ToUpper(strings.Join(path, "_"))
}

// expand resolves ${VAR:-default}.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	inner := value[2 : len(value)-1]
	name, def, _ := strings.Cut(inner, ":-")
	if env := os.Getenv(strings.TrimSpace(name)); env != "" {
		return env
	}
	return strings.TrimSpace(def)
}
