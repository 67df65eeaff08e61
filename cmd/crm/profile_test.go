package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := ProfilesConfig{
		Active: "prod",
		Profiles: map[string]Profile{
			"prod":  {URL: "https://crm.example.com", Token: "tok_abc", NATSURL: "nats://prod:4222"},
			"local": {URL: "http://localhost:8080"},
		},
	}
	if err := saveProfilesConfig(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := loadProfilesConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Active != "prod" {
		t.Errorf("Active = %q, want %q", got.Active, "prod")
	}
	prod := got.Profiles["prod"]
	if prod.URL != "https://crm.example.com" || prod.Token != "tok_abc" || prod.NATSURL != "nats://prod:4222" {
		t.Errorf("prod profile = %+v, wrong values", prod)
	}
	if got.Profiles == nil {
		t.Error("Profiles map must not be nil after load")
	}
}

func TestLoadProfilesConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadProfilesConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Active != "" || len(cfg.Profiles) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveProfilesConfig_Permissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := saveProfilesConfig(ProfilesConfig{Profiles: map[string]Profile{}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, _ := profileConfigPath()
	check := func(p string, want os.FileMode) {
		t.Helper()
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s permissions = %04o, want %04o", p, got, want)
		}
	}
	check(path, 0o600)
	check(filepath.Dir(path), 0o700)
}
