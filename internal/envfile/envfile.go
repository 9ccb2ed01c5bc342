package envfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ksyq12/certman/internal/config"
	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/logger"
	"github.com/ksyq12/certman/internal/template"
)

// Managed env file keys.
const (
	KeySSLMode  = "SSL_MODE"
	KeyCertPath = "COMMERCIAL_CERT_PATH"
	KeyKeyPath  = "COMMERCIAL_KEY_PATH"
	KeyHostname = "SERVER_HOSTNAME"
)

// SSLModeCommercial tells the server to load the managed certificate.
const SSLModeCommercial = "commercial"

// Entry is one key=value pair to upsert.
type Entry struct {
	Key   string
	Value string
}

// Synchronizer applies certificate records to an env file.
type Synchronizer struct {
	// Path of the env file to manage.
	Path string
}

// NewSynchronizer creates a synchronizer for the env file at path.
func NewSynchronizer(path string) *Synchronizer {
	return &Synchronizer{Path: path}
}

// Apply writes the record's certificate paths into the env file,
// switching the server to commercial TLS. Extra entries are upserted
// after the managed keys.
func (s *Synchronizer) Apply(record *config.CertificateRecord, extra []Entry) error {
	if record == nil {
		return errors.Validation("certificate record is required")
	}

	entries := []Entry{
		{KeySSLMode, SSLModeCommercial},
		{KeyCertPath, record.ChainPath},
		{KeyKeyPath, record.KeyPath},
		{KeyHostname, record.Domain},
	}
	entries = append(entries, extra...)

	return s.Upsert(entries)
}

// Upsert rewrites the env file with the given entries applied, creating
// it from the default template when absent.
func (s *Synchronizer) Upsert(entries []Entry) error {
	for _, e := range entries {
		if e.Key == "" || strings.ContainsAny(e.Key, "=\n") || strings.Contains(e.Value, "\n") {
			return errors.Validation("invalid env entry: " + e.Key)
		}
	}

	content, err := s.readOrCreate()
	if err != nil {
		return err
	}

	updated := upsertLines(content, entries)
	if updated == content {
		logger.Debug("env file %s already up to date", s.Path)
		return nil
	}

	return s.writeAtomic(updated)
}

// Read parses the env file into a key/value map.
func (s *Synchronizer) Read() (map[string]string, error) {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, "env file does not exist", err)
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse env file", err)
	}
	return values, nil
}

func (s *Synchronizer) readOrCreate() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeIO, "failed to read env file", err)
	}

	logger.Info("env file %s does not exist, generating default", s.Path)
	content, err := template.RenderEnv(template.EnvData{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render default env file", err)
	}
	return content, nil
}

func (s *Synchronizer) writeAtomic(content string) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to create env file directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to create temp env file", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeIO, "failed to set env file mode", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeIO, "failed to write env file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeIO, "failed to close env file", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeIO, "failed to replace env file", err)
	}
	return nil
}

// upsertLines rewrites the first occurrence of each key, drops later
// duplicates of managed keys, and appends keys that never appeared.
// All other lines pass through untouched.
func upsertLines(content string, entries []Entry) string {
	trailingNewline := content == "" || strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}

	managed := make(map[string]string, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := managed[e.Key]; !ok {
			order = append(order, e.Key)
		}
		managed[e.Key] = e.Value
	}

	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(lines)+len(entries))
	for _, line := range lines {
		key := lineKey(line)
		value, ok := managed[key]
		if !ok {
			out = append(out, line)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		rewritten := key + "=" + value
		// A shell-style "export KEY=..." line keeps its export keyword.
		if strings.HasPrefix(strings.TrimSpace(line), "export ") {
			rewritten = "export " + rewritten
		}
		out = append(out, rewritten)
	}

	for _, key := range order {
		if !seen[key] {
			out = append(out, key+"="+managed[key])
		}
	}

	result := strings.Join(out, "\n")
	if trailingNewline || len(out) > 0 {
		result += "\n"
	}
	return result
}

// lineKey extracts the key of a KEY=value line, or "" for comments,
// blank lines, and anything else.
func lineKey(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	eq := strings.Index(trimmed, "=")
	if eq <= 0 {
		return ""
	}
	key := strings.TrimSpace(trimmed[:eq])
	key = strings.TrimPrefix(key, "export ")
	return strings.TrimSpace(key)
}
