package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the YAML-loadable form of a model. It carries only what a
// file can express: attribute property maps, no function values and no
// lifecycle callbacks.
type Definition struct {
	// Identity is the model name (e.g., "user").
	Identity string `yaml:"identity"`

	// Attributes maps attribute names to property maps.
	Attributes map[string]Attribute `yaml:"attributes"`
}

// ParseFile parses a model definition from a YAML file.
func ParseFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses a model definition from YAML bytes.
func Parse(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(def); err != nil {
		return Definition{}, fmt.Errorf("validate model %q: %w", def.Identity, err)
	}

	return def, nil
}

// ParseDir parses all model definitions from a directory, including
// subdirectories.
func ParseDir(dir string) ([]Definition, error) {
	var defs []Definition

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		def, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, nil
}

// Validate validates a model definition.
func Validate(def Definition) error {
	var errs []string

	if def.Identity == "" {
		errs = append(errs, "model identity is required")
	} else if !isValidIdentifier(def.Identity) {
		errs = append(errs, fmt.Sprintf("model identity %q is not a valid identifier", def.Identity))
	}

	for name, attr := range def.Attributes {
		if !isValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("attribute name %q is not a valid identifier", name))
		}

		if err := validateAttribute(name, attr); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validateAttribute validates a single attribute definition.
func validateAttribute(name string, attr Attribute) error {
	t, ok := attr[PropType]
	if !ok {
		return nil // typeless attributes are legal; the framework defaults them
	}

	s, ok := t.(string)
	if !ok || !isValidAttributeType(s) {
		return fmt.Errorf("attribute %q: unknown type %v", name, t)
	}

	if req, ok := attr[PropRequired]; ok {
		if _, ok := req.(bool); !ok {
			return fmt.Errorf("attribute %q: required must be a boolean", name)
		}
	}

	if max, ok := attr[PropMaxLength]; ok {
		if _, ok := max.(int); !ok {
			return fmt.Errorf("attribute %q: maxLength must be an integer", name)
		}
	}

	return nil
}

// isValidIdentifier checks if a string is a valid attribute or model name.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// isValidAttributeType checks if an attribute type is one the framework
// understands.
func isValidAttributeType(t string) bool {
	switch t {
	case TypeString, TypeText, TypeInteger, TypeFloat,
		TypeBoolean, TypeDatetime, TypeJSON:
		return true
	default:
		return false
	}
}
