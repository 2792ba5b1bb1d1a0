package manifest

import (
	"fmt"
	"strings"
)

// ValidationResult collects every problem found in a manifest.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Err folds the result into a single error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid manifest:\n  - %s", strings.Join(r.Errors, "\n  - "))
}

// Validate checks the manifest. Only sections present are validated.
func (m *Manifest) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: []string{}}

	m.validateSecrets(result)
	m.validateGroups(result)
	m.validateUsers(result)

	return result
}

func (m *Manifest) validateSecrets(result *ValidationResult) {
	if len(m.Secrets) > 0 && strings.TrimSpace(m.SecretManager) == "" {
		result.addError("secretManager is required when secrets are listed")
	}

	seen := map[string]bool{}
	for i, s := range m.Secrets {
		if strings.TrimSpace(s.Name) == "" {
			result.addError("secrets[%d]: name is required", i)
			continue
		}
		if s.Value == "" {
			result.addError("secret %q: value is required", s.Name)
		}
		if seen[s.Name] {
			result.addError("secret %q: listed more than once", s.Name)
		}
		seen[s.Name] = true
	}
}

func (m *Manifest) validateGroups(result *ValidationResult) {
	seen := map[string]bool{}
	for i, g := range m.Groups {
		if strings.TrimSpace(g.Name) == "" {
			result.addError("groups[%d]: name is required", i)
			continue
		}
		if seen[g.Name] {
			result.addError("group %q: listed more than once", g.Name)
		}
		seen[g.Name] = true

		for _, member := range g.Members {
			if strings.TrimSpace(member) == "" {
				result.addError("group %q: empty member name", g.Name)
			}
		}
	}
}

func (m *Manifest) validateUsers(result *ValidationResult) {
	seen := map[string]bool{}
	for i, u := range m.Users {
		if strings.TrimSpace(u.Name) == "" {
			result.addError("users[%d]: name is required", i)
			continue
		}
		if seen[u.Name] {
			result.addError("user %q: listed more than once", u.Name)
		}
		seen[u.Name] = true

		if strings.TrimSpace(u.Email) == "" {
			result.addError("user %q: email is required", u.Name)
		}

		switch {
		case len(u.Groups) == 0:
			result.addError("user %q: at least one group is required", u.Name)
		case len(u.Groups) > MaxUserGroups:
			result.addError("user %q: %d groups listed (maximum %d)", u.Name, len(u.Groups), MaxUserGroups)
		}
		for _, g := range u.Groups {
			if strings.TrimSpace(g) == "" {
				result.addError("user %q: empty group name", u.Name)
			}
		}
	}
}
