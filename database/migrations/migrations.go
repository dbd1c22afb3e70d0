// Package migrations holds the storefront schema. Each file registers its
// migrations from init(); blank-import this package wherever the schema must
// be ensured (server startup, the migrate command, tests).
package migrations
