// Package template renders the default server env file from an embedded
// Go template.
//
// When the configuration synchronizer targets an env file that does not
// exist yet, it generates one from env/server.env.tmpl instead of
// starting from an empty file, so the server always has a complete
// configuration to load.
package template
