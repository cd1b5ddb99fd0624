package client

import "github.com/fivetwenty-io/directus-sdk/pkg/directus"

// NewRolesClient creates the client for directus_roles.
func NewRolesClient(transport directus.Transport) *ItemsClient[directus.Role] {
	return NewItemsClient[directus.Role](transport, "directus_roles")
}

// NewPermissionsClient creates the client for directus_permissions.
func NewPermissionsClient(transport directus.Transport) *ItemsClient[directus.Permission] {
	return NewItemsClient[directus.Permission](transport, "directus_permissions")
}

// NewPresetsClient creates the client for directus_presets.
func NewPresetsClient(transport directus.Transport) *ItemsClient[directus.Preset] {
	return NewItemsClient[directus.Preset](transport, "directus_presets")
}

// NewRevisionsClient creates the client for directus_revisions.
func NewRevisionsClient(transport directus.Transport) *ItemsClient[directus.Revision] {
	return NewItemsClient[directus.Revision](transport, "directus_revisions")
}
