package credential

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ksyq12/certman/internal/errors"
)

func TestSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir() + "/creds")

	path, err := store.Save("cloudflare", "secret-token", false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credential file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	cred, err := store.Load("cloudflare")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cred.Provider != "cloudflare" {
		t.Errorf("expected provider cloudflare, got %s", cred.Provider)
	}
	if cred.Token != "secret-token" {
		t.Errorf("expected token to round trip, got %q", cred.Token)
	}
	if cred.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if time.Since(cred.CreatedAt) > time.Minute {
		t.Errorf("created_at looks stale: %v", cred.CreatedAt)
	}
}

func TestSaveEmptySecret(t *testing.T) {
	store := NewStore(t.TempDir())

	tests := []string{"", "   ", "\t\n"}
	for _, token := range tests {
		if _, err := store.Save("cloudflare", token, false); !errors.Is(err, errors.ErrEmptySecret) {
			t.Errorf("Save(%q) error = %v, want ErrEmptySecret", token, err)
		}
	}
}

func TestSaveEmptyProvider(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Save("", "token", false); err == nil {
		t.Error("Save with empty provider should fail")
	}
}

func TestSaveExistingWithoutOverwrite(t *testing.T) {
	store := NewStore(t.TempDir() + "/creds")

	path, err := store.Save("cloudflare", "original-token", false)
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Save("cloudflare", "new-token", false)
	if !errors.Is(err, errors.ErrCredentialExists) {
		t.Errorf("second Save error = %v, want ErrCredentialExists", err)
	}

	// The original file must be byte-for-byte unchanged.
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != string(after) {
		t.Error("failed Save must not modify the existing credential file")
	}
}

func TestSaveOverwrite(t *testing.T) {
	store := NewStore(t.TempDir() + "/creds")

	if _, err := store.Save("cloudflare", "old-token", false); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if _, err := store.Save("cloudflare", "new-token", true); err != nil {
		t.Fatalf("overwrite Save failed: %v", err)
	}

	cred, err := store.Load("cloudflare")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cred.Token != "new-token" {
		t.Errorf("expected overwritten token, got %q", cred.Token)
	}
}

func TestConcurrentSaves(t *testing.T) {
	store := NewStore(t.TempDir() + "/creds")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		token := fmt.Sprintf("token-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Save("cloudflare", token, true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Save failed: %v", err)
	}

	// The surviving file must be one complete write, never an interleaving.
	cred, err := store.Load("cloudflare")
	if err != nil {
		t.Fatalf("Load after concurrent saves failed: %v", err)
	}
	if !strings.HasPrefix(cred.Token, "token-") || strings.ContainsAny(cred.Token, "\n=") {
		t.Errorf("token does not match any single write: %q", cred.Token)
	}
	if cred.Provider != "cloudflare" {
		t.Errorf("provider corrupted: %q", cred.Provider)
	}
	if cred.CreatedAt.IsZero() {
		t.Error("created_at missing after concurrent saves")
	}
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("cloudflare")
	if !errors.Is(err, errors.ErrCredentialNotFound) {
		t.Errorf("Load error = %v, want ErrCredentialNotFound", err)
	}
}

func TestLoadMissingToken(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(store.Path("cloudflare"), []byte("provider=cloudflare\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load("cloudflare"); err == nil {
		t.Error("Load should fail when the file has no token")
	}
}

func TestProvidersAreIsolated(t *testing.T) {
	store := NewStore(t.TempDir() + "/creds")

	if _, err := store.Save("cloudflare", "cf-token", false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("digitalocean", "do-token", false); err != nil {
		t.Fatal(err)
	}

	cf, err := store.Load("cloudflare")
	if err != nil {
		t.Fatal(err)
	}
	do, err := store.Load("digitalocean")
	if err != nil {
		t.Fatal(err)
	}
	if cf.Token != "cf-token" || do.Token != "do-token" {
		t.Errorf("tokens crossed providers: cf=%q do=%q", cf.Token, do.Token)
	}
}
