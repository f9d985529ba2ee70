package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "jwt_secret: s3cret\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Scanner.Interval != 500*time.Millisecond {
		t.Errorf("Scanner.Interval = %v, want 500ms", cfg.Scanner.Interval)
	}
	if cfg.Scanner.DedupeWindow != 3*time.Second {
		t.Errorf("Scanner.DedupeWindow = %v, want 3s", cfg.Scanner.DedupeWindow)
	}
	if !cfg.Scanner.Policy.BlockDeclinedOnScan {
		t.Error("BlockDeclinedOnScan should default to true")
	}
	if cfg.Scanner.Policy.BlockDeclinedOnManual {
		t.Error("BlockDeclinedOnManual should default to false")
	}
	if cfg.Email.SMTPPort != 587 {
		t.Errorf("Email.SMTPPort = %d, want 587", cfg.Email.SMTPPort)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := writeConfig(t, `
jwt_secret: s3cret
server_port: "9090"
database:
  driver: sqlite3
  path: /tmp/desk.db
scanner:
  interval: 250ms
  dedupe_window: 5s
  policy:
    block_declined_on_manual: true
email:
  alert_recipients:
    - ops@example.com
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Database.Path != "/tmp/desk.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Scanner.Interval != 250*time.Millisecond || cfg.Scanner.DedupeWindow != 5*time.Second {
		t.Errorf("Scanner = %+v", cfg.Scanner)
	}
	if !cfg.Scanner.Policy.BlockDeclinedOnManual || !cfg.Scanner.Policy.BlockDeclinedOnScan {
		t.Errorf("Policy = %+v", cfg.Scanner.Policy)
	}
	if len(cfg.Email.AlertRecipients) != 1 || cfg.Email.AlertRecipients[0] != "ops@example.com" {
		t.Errorf("AlertRecipients = %v", cfg.Email.AlertRecipients)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := writeConfig(t, "jwt_secret: from-file\n")
	t.Setenv("INVITOPIA_JWT_SECRET", "from-env")
	t.Setenv("INVITOPIA_DATABASE_DRIVER", "sqlite3")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("JWTSecret = %q, want from-env", cfg.JWTSecret)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	dir := writeConfig(t, "server_port: \"8080\"\n")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error when jwt_secret is missing")
	}
}
