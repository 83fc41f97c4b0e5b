package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TADA_API_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.Store != "sqlite" || cfg.Theme != "classic" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestPrecedenceFileEnvFlags(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
api_url = "http://file.example:9000"
theme = "neon"
log_level = "debug"
`)
	t.Setenv("TADA_THEME", "mono")
	t.Setenv("TADA_API_URL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://file.example:9000" {
		t.Fatalf("expected file api url, got %q", cfg.APIURL)
	}
	if cfg.Theme != "mono" {
		t.Fatalf("expected env to override theme, got %q", cfg.Theme)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected file log level, got %q", cfg.LogLevel)
	}

	if err := cfg.ApplyFlags(Flags{APIURL: "https://flag.example"}); err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.APIURL != "https://flag.example" {
		t.Fatalf("expected flag to win, got %q", cfg.APIURL)
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeFile(t, filepath.Join(dir, ".env"), "TADA_API_URL=http://dotenv.example:8000\nTADA_STORE=json\n")
	t.Setenv("TADA_STORE", "sqlite")
	t.Setenv("TADA_API_URL", "")
	os.Unsetenv("TADA_API_URL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://dotenv.example:8000" {
		t.Fatalf("expected .env api url, got %q", cfg.APIURL)
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("expected environment to beat .env, got %q", cfg.Store)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("TADA_API_URL", "")

	cases := map[string]string{
		"scheme":      `api_url = "ftp://x"`,
		"store":       `store = "postgres"`,
		"unknown key": `colour = "red"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".toml")
			writeFile(t, path, body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a , ,http://b")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected split %v", got)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
