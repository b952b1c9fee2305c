// Package appfs exposes the application's embedded assets:
// email templates and database migrations.
package appfs

import "embed"

//go:embed all:templates migrations
var FS embed.FS
