package llmmodel

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RolePolicy is the declarative role -> model table, optionally loaded from YAML:
//
//	default: gpt-4o-mini
//	roles:
//	  trader: gpt-4o
//	  fund_manager: o1-preview
type RolePolicy struct {
	Default string            `yaml:"default" json:"default"`
	Roles   map[string]string `yaml:"roles" json:"roles"`
}

// DefaultRolePolicy returns a copy of the built-in policy.
func DefaultRolePolicy() RolePolicy {
	roles := make(map[string]string, len(defaultRolePolicy))
	for role, model := range defaultRolePolicy {
		roles[role] = model
	}
	return RolePolicy{Default: DefaultAgentModel, Roles: roles}
}

// LoadRolePolicy reads a policy file. Roles in the file override the built-in entries;
// roles the file does not mention keep their built-in model.
func LoadRolePolicy(path string) (RolePolicy, error) {
	policy := DefaultRolePolicy()

	path = strings.TrimSpace(path)
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RolePolicy{}, fmt.Errorf("read role policy %s: %w", path, err)
	}

	var file RolePolicy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RolePolicy{}, fmt.Errorf("parse role policy %s: %w", path, err)
	}

	for role, model := range file.Roles {
		role = strings.TrimSpace(role)
		model = strings.TrimSpace(model)
		if role == "" || model == "" {
			return RolePolicy{}, errors.New("role policy entries require both role and model")
		}
		policy.Roles[role] = model
	}
	if def := strings.TrimSpace(file.Default); def != "" {
		policy.Default = def
	}

	return policy, nil
}
