package template

import (
	"bytes"
	"fmt"
	"text/template"
)

// Defaults for a freshly generated server env file.
const (
	DefaultPort    = 8443
	DefaultSSLMode = "self_signed"
)

// EnvData contains data for rendering the server env file.
type EnvData struct {
	Hostname string
	Port     int
	SSLMode  string
	CertPath string
	KeyPath  string
}

// RenderEnv renders the default server env file. Zero-value fields are
// filled with sensible defaults so the result is always a loadable
// configuration.
func RenderEnv(data EnvData) (string, error) {
	if data.Port == 0 {
		data.Port = DefaultPort
	}
	if data.SSLMode == "" {
		data.SSLMode = DefaultSSLMode
	}
	if data.Hostname == "" {
		data.Hostname = "localhost"
	}

	content, err := envTemplates.ReadFile("env/server.env.tmpl")
	if err != nil {
		return "", fmt.Errorf("template not found: env/server.env.tmpl")
	}

	tmpl, err := template.New("server.env").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}
