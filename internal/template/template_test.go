package template

import (
	"strings"
	"testing"
)

func TestRenderEnv(t *testing.T) {
	t.Run("renders all fields", func(t *testing.T) {
		out, err := RenderEnv(EnvData{
			Hostname: "example.com",
			Port:     8443,
			SSLMode:  "commercial",
			CertPath: "/certs/example.com/fullchain.pem",
			KeyPath:  "/certs/example.com/privkey.pem",
		})
		if err != nil {
			t.Fatalf("RenderEnv failed: %v", err)
		}

		for _, want := range []string{
			"SERVER_HOSTNAME=example.com",
			"SERVER_PORT=8443",
			"SSL_MODE=commercial",
			"COMMERCIAL_CERT_PATH=/certs/example.com/fullchain.pem",
			"COMMERCIAL_KEY_PATH=/certs/example.com/privkey.pem",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("defaults for zero values", func(t *testing.T) {
		out, err := RenderEnv(EnvData{})
		if err != nil {
			t.Fatalf("RenderEnv failed: %v", err)
		}
		if !strings.Contains(out, "SERVER_PORT=8443") {
			t.Errorf("expected default port, got:\n%s", out)
		}
		if !strings.Contains(out, "SSL_MODE=self_signed") {
			t.Errorf("expected default ssl mode, got:\n%s", out)
		}
		if !strings.Contains(out, "SERVER_HOSTNAME=localhost") {
			t.Errorf("expected default hostname, got:\n%s", out)
		}
	})
}
