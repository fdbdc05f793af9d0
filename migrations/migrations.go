// Package migrations embeds the schema files so binaries do not depend on
// the working directory.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
