// Package migrations embute os arquivos SQL do goose no binário.
package migrations

import "embed"

// FS contém as migrations versionadas (NNNNN_descricao.sql).
//
//go:embed *.sql
var FS embed.FS
