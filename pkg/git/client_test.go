package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	// Verify lock file exists
	lockPath := filepath.Join(tmpDir, ".quarry.lock")
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	// Verify lock file removed
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_Init(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, ".git")); os.IsNotExist(err) {
		t.Error(".git directory not created")
	}
}

func TestClient_CommitFlow(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	// Commits need an identity in fresh CI environments.
	if _, err := client.Run("config", "user.email", "test@example.com"); err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, err := client.Run("config", "user.name", "Test"); err != nil {
		t.Fatalf("config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "doc.md"), []byte("# Doc\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Add("doc.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := client.Commit("docs: add doc"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	sha, err := client.RevParse("HEAD")
	if err != nil {
		t.Fatalf("rev-parse: %v", err)
	}
	if len(sha) != 40 {
		t.Errorf("sha = %q, want full 40-char SHA", sha)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != "" {
		t.Errorf("status = %q, want clean tree", status)
	}
}

func TestClient_CheckoutNew(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if err := client.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := client.Run("config", "user.email", "test@example.com"); err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, err := client.Run("config", "user.name", "Test"); err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte("a\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Add("a.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := client.Commit("docs: seed"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := client.CheckoutNew("ssot-update-test"); err != nil {
		t.Fatalf("checkout -b: %v", err)
	}
	// Second checkout of the same branch must reuse it.
	if err := client.CheckoutNew("ssot-update-test"); err != nil {
		t.Fatalf("checkout existing: %v", err)
	}

	branch, err := client.Run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		t.Fatalf("rev-parse: %v", err)
	}
	if branch != "ssot-update-test" {
		t.Errorf("branch = %q", branch)
	}
}

func TestClient_IsRepo(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if client.IsRepo() {
		t.Error("plain directory reported as a repository")
	}

	if err := client.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !client.IsRepo() {
		t.Error("initialized directory not reported as a repository")
	}
}

func TestFormatCommitMessage(t *testing.T) {
	msg := FormatCommitMessage(CommitTypeDocs, "files", "update deploy guide", "requested via update pipeline")

	want := "docs(files): update deploy guide\n\nrequested via update pipeline\n\nPowered-by: Quarry"
	if msg != want {
		t.Errorf("msg = %q, want %q", msg, want)
	}
}

func TestFormatCommitMessage_Defaults(t *testing.T) {
	msg := FormatCommitMessage("", "", "touch", "")
	if msg != "docs: touch\n\nPowered-by: Quarry" {
		t.Errorf("msg = %q", msg)
	}
}

func TestSanitizeRef(t *testing.T) {
	cases := map[string]string{
		"run id with spaces & symbols!": "run-id-with-spaces-symbols",
		"Already-Fine-123":              "already-fine-123",
		"___":                           "",
	}
	for in, want := range cases {
		if got := SanitizeRef(in); got != want {
			t.Errorf("SanitizeRef(%q) = %q, want %q", in, got, want)
		}
	}
}
