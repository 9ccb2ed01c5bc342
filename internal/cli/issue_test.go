package cli

import (
	"strings"
	"testing"

	"github.com/ksyq12/certman/internal/errors"
)

func resetIssueFlags() {
	issueEmail = ""
	issueAgreeTOS = false
	issueTimeout = 0
	issueNoApply = false
	issueSet = nil
}

func TestRunIssue(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		setupFlags  func()
		setup       func(*TestHelper)
		wantErr     bool
		wantExit    int
		errContains string
		validate    func(*testing.T, *TestHelper)
	}{
		{
			name: "issue succeeds and records certificate",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			validate: func(t *testing.T, h *TestHelper) {
				record, ok := h.GetConfig().GetRecord("example.com")
				if !ok {
					t.Fatal("certificate record not stored in config")
				}
				if record.ChainPath == "" || record.KeyPath == "" {
					t.Errorf("record is missing paths: %+v", record)
				}
				if h.MockConfig.SaveCalls != 1 {
					t.Errorf("expected 1 config save, got %d", h.MockConfig.SaveCalls)
				}
				if len(h.MockProvider.CleanupCalls) != 1 {
					t.Errorf("expected 1 cleanup, got %d", len(h.MockProvider.CleanupCalls))
				}
			},
		},
		{
			name: "issue updates env file when configured",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			setup: func(h *TestHelper) {
				h.GetConfig().EnvFile = "/srv/app/server.env"
			},
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.MockEnvSync.Calls) != 1 {
					t.Fatalf("expected 1 env sync, got %d", len(h.MockEnvSync.Calls))
				}
				if h.MockEnvSync.Calls[0] != "/srv/app/server.env:example.com" {
					t.Errorf("unexpected env sync call: %s", h.MockEnvSync.Calls[0])
				}
			},
		},
		{
			name: "positional email registers the account",
			args: []string{"example.com", "ops@example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			setup: func(h *TestHelper) {
				h.GetConfig().Email = ""
			},
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.StubAuthority.RegisterCalls) != 1 || h.StubAuthority.RegisterCalls[0] != "ops@example.com" {
					t.Errorf("unexpected register calls: %v", h.StubAuthority.RegisterCalls)
				}
			},
		},
		{
			name: "set flag entries reach the env file",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
				issueSet = []string{"SERVER_PORT=9443"}
			},
			setup: func(h *TestHelper) {
				h.GetConfig().EnvFile = "/srv/app/server.env"
			},
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.MockEnvSync.Extra) != 1 || h.MockEnvSync.Extra[0].Key != "SERVER_PORT" {
					t.Errorf("extra entries not forwarded: %v", h.MockEnvSync.Extra)
				}
			},
		},
		{
			name: "no-apply skips env file",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
				issueNoApply = true
			},
			setup: func(h *TestHelper) {
				h.GetConfig().EnvFile = "/srv/app/server.env"
			},
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.MockEnvSync.Calls) != 0 {
					t.Errorf("env file must not be touched with --no-apply, got %d calls", len(h.MockEnvSync.Calls))
				}
			},
		},
		{
			name:        "missing terms agreement fails with exit 2",
			args:        []string{"example.com"},
			setupFlags:  func() {},
			wantErr:     true,
			wantExit:    errors.ExitInvalidArgs,
			errContains: "terms",
			validate: func(t *testing.T, h *TestHelper) {
				if h.StubAuthority.TotalAuthorityCalls() != 0 {
					t.Error("authority must not be contacted without terms agreement")
				}
			},
		},
		{
			name: "invalid domain fails with exit 2",
			args: []string{"not a domain"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			wantErr:  true,
			wantExit: errors.ExitInvalidArgs,
		},
		{
			name: "missing credential fails with exit 3",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			setup: func(h *TestHelper) {
				deps.CredentialStore = &MockCredentialStore{
					LoadErr: errors.CredentialNotFound("cloudflare"),
				}
			},
			wantErr:  true,
			wantExit: errors.ExitCredential,
		},
		{
			name: "authority rejection fails with exit 5",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			setup: func(h *TestHelper) {
				h.StubAuthority.RejectValidation = true
			},
			wantErr:  true,
			wantExit: errors.ExitAuthority,
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.MockProvider.CleanupCalls) != 1 {
					t.Errorf("cleanup must still run on rejection, got %d", len(h.MockProvider.CleanupCalls))
				}
				if _, ok := h.GetConfig().GetRecord("example.com"); ok {
					t.Error("failed issuance must not store a record")
				}
			},
		},
		{
			name: "missing email fails when config has none",
			args: []string{"example.com"},
			setupFlags: func() {
				issueAgreeTOS = true
			},
			setup: func(h *TestHelper) {
				h.GetConfig().Email = ""
			},
			wantErr:     true,
			wantExit:    errors.ExitInvalidArgs,
			errContains: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper := NewTestHelper(t, t.TempDir())
			resetIssueFlags()
			tt.setupFlags()
			if tt.setup != nil {
				tt.setup(helper)
			}

			err := runIssue(nil, tt.args)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(strings.ToLower(err.Error()), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				if tt.wantExit != 0 && errors.ExitCode(err) != tt.wantExit {
					t.Errorf("exit code = %d, want %d (err: %v)", errors.ExitCode(err), tt.wantExit, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, helper)
			}
		})
	}
}

func TestRunIssueValidationTimeoutExitCode(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	resetIssueFlags()
	issueAgreeTOS = true
	issueTimeout = 1 // second
	helper.StubAuthority.PollsUntilValid = 1 << 30

	err := runIssue(nil, []string{"example.com"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, errors.ErrValidationTimeout) {
		t.Fatalf("expected ErrValidationTimeout, got %v", err)
	}
	if errors.ExitCode(err) != errors.ExitTimeout {
		t.Errorf("exit code = %d, want %d", errors.ExitCode(err), errors.ExitTimeout)
	}
}
