package template

import "embed"

//go:embed env/*.tmpl
var envTemplates embed.FS
