package config

import _ "embed"

// DefaultPermissionsYAML is the permission table applied to workspaces without an override
//
//go:embed permissions.yaml
var DefaultPermissionsYAML []byte
