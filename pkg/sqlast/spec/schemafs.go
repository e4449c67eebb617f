// Package spec provides the embedded SQL tree document schema.
package spec

import "embed"

// TreeSchemaFile is the name of the embedded tree document schema.
const TreeSchemaFile = "tree-schema.json"

// TreeSchemaFS contains the embedded tree document JSON schema.
//
//go:embed tree-schema.json
var TreeSchemaFS embed.FS
