package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TenantsFile is the parsed per-tenant topology: which workflow backend a
// tenant binds to, which identity vendor serves it, and which token claim is
// "the" user id for that tenant.
type TenantsFile struct {
	Tenants []TenantConfig `yaml:"tenants"`
}

// TenantConfig describes one tenant.
type TenantConfig struct {
	ID          string          `yaml:"id"`
	UserIDClaim string          `yaml:"user_id_claim"` // subject | email | preferred_username
	Backend     BackendConfig   `yaml:"backend"`
	Identity    *IdentityConfig `yaml:"identity"` // nil when no adapter is configured
}

// BackendConfig is one tenant's workflow-backend connection.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// IdentityConfig is one tenant's identity-provider binding.
type IdentityConfig struct {
	Vendor       string `yaml:"vendor"` // only "keycloak" is bound today
	URL          string `yaml:"url"`
	Realm        string `yaml:"realm"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// LoadTenants reads and validates the tenants YAML file.
func LoadTenants(path string) (*TenantsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadTenants: %w", err)
	}

	var tf TenantsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("config.LoadTenants: parse %s: %w", path, err)
	}

	if len(tf.Tenants) == 0 {
		return nil, fmt.Errorf("config.LoadTenants: %s declares no tenants", path)
	}

	seen := make(map[string]struct{}, len(tf.Tenants))
	for i := range tf.Tenants {
		t := &tf.Tenants[i]
		if t.ID == "" {
			return nil, fmt.Errorf("config.LoadTenants: tenant %d has no id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("config.LoadTenants: duplicate tenant id %q", t.ID)
		}
		seen[t.ID] = struct{}{}

		if t.Backend.URL == "" {
			return nil, fmt.Errorf("config.LoadTenants: tenant %q has no backend url", t.ID)
		}
		if t.Identity != nil {
			if t.Identity.Vendor != "keycloak" {
				return nil, fmt.Errorf("config.LoadTenants: tenant %q: unsupported identity vendor %q", t.ID, t.Identity.Vendor)
			}
			if t.Identity.URL == "" || t.Identity.Realm == "" || t.Identity.ClientID == "" {
				return nil, fmt.Errorf("config.LoadTenants: tenant %q: identity url, realm and client_id are required", t.ID)
			}
		}
	}

	return &tf, nil
}
