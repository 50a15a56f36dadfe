package config

import (
	"fmt"
	"strings"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPolicy says which schema steps run on connect.
type SchemaPolicy struct {
	Mode    string
	RunSQL  bool
	RunAuto bool
}

// IsProdLike reports whether the env is production or staging. Destructive
// tooling (AutoMigrate, table truncation) is refused there.
func (c *Config) IsProdLike() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// SchemaMode returns DB_SCHEMA_MODE lower-cased, defaulting to hybrid.
func (c *Config) SchemaMode() string {
	mode := strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// Schema resolves the schema policy. Hybrid runs the SQL migrations
// everywhere and AutoMigrate only outside prod-like envs; auto in a prod-like
// env needs DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
func (c *Config) Schema() (SchemaPolicy, error) {
	policy := SchemaPolicy{Mode: c.SchemaMode()}
	prodLike := c.IsProdLike()

	switch policy.Mode {
	case SchemaModeSQL:
		policy.RunSQL = true
	case SchemaModeAuto:
		if prodLike && !c.DBAutoMigrateAllowDestructive {
			return SchemaPolicy{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", c.Env)
		}
		policy.RunAuto = true
	case SchemaModeHybrid:
		policy.RunSQL = true
		policy.RunAuto = !prodLike
	default:
		return SchemaPolicy{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", policy.Mode)
	}
	return policy, nil
}
