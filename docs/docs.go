// Package docs embute o documento OpenAPI servido em /swagger/doc.json.
package docs

import _ "embed"

//go:embed swagger.json
var SwaggerJSON []byte
