// Package manifest provides manifest file parsing and validation for batch provisioning.
//
// A manifest lists groups (with members), users (with group names) and
// secrets (with the secret manager that stores them). The validator catches
// empty fields, duplicates and unresolvable shapes before any request is sent.
//
// Supports both YAML (.yaml, .yml) and JSON (.json) manifest files.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxUserGroups is the number of groups a user may be assigned at creation.
const MaxUserGroups = 5

// Manifest represents the manifest file structure
type Manifest struct {
	SecretManager string   `yaml:"secretManager,omitempty" json:"secretManager,omitempty"`
	Secrets       []Secret `yaml:"secrets,omitempty" json:"secrets,omitempty"`
	Groups        []Group  `yaml:"groups,omitempty" json:"groups,omitempty"`
	Users         []User   `yaml:"users,omitempty" json:"users,omitempty"`
}

// Secret represents an encrypted text secret
type Secret struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Group represents a user group with members named by user name
type Group struct {
	Name    string   `yaml:"name" json:"name"`
	Members []string `yaml:"members,omitempty" json:"members,omitempty"`
}

// User represents a user assigned to groups named by group name
type User struct {
	Name   string   `yaml:"name" json:"name"`
	Email  string   `yaml:"email" json:"email"`
	Groups []string `yaml:"groups" json:"groups"`
}

// Load loads and parses a manifest file (supports .yaml, .yml, and .json)
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m Manifest

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
		}
	default:
		// JSON is valid YAML, so YAML covers unknown extensions
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest (unknown extension %s, tried YAML): %w", ext, err)
		}
	}

	return &m, nil
}
