package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Wiki struct {
		File             string `koanf:"file"`
		BackupDir        string `koanf:"backup_dir"`
		SerializeUpdates bool   `koanf:"serialize_updates"`
	} `koanf:"wiki"`
	Server struct {
		HTTP struct {
			Address string `koanf:"address"`
			Port    int    `koanf:"port"`
		} `koanf:"http"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"server"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithConfigFile("/etc/tw5keep/config.yaml"),
		WithOverrides(map[string]any{"wiki.file": "x"}),
	)

	if l.filePath != "/etc/tw5keep/config.yaml" {
		t.Errorf("filePath = %q", l.filePath)
	}
	if len(l.overrides) != 1 {
		t.Errorf("overrides len = %d, want 1", len(l.overrides))
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
wiki:
  file: /srv/wiki/index.html
  backup_dir: /srv/wiki/backups
server:
  http:
    address: 127.0.0.1
    port: 8080
  shutdown_timeout: 5s
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Wiki.BackupDir != "/srv/wiki/backups" {
		t.Errorf("wiki.backup_dir = %q", cfg.Wiki.BackupDir)
	}
	if cfg.Server.HTTP.Port != 8080 {
		t.Errorf("server.http.port = %d, want 8080", cfg.Server.HTTP.Port)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}

func TestLoader_LoadFile_EmptyPath(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v, want nil", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("TW5KEEP_WIKI__BACKUP_DIR", "/env/backups")
	t.Setenv("TW5KEEP_SERVER__HTTP__PORT", "9000")
	t.Setenv("TW5KEEP_WIKI__SERIALIZE_UPDATES", "true")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Wiki.BackupDir != "/env/backups" {
		t.Errorf("wiki.backup_dir = %q, want /env/backups", cfg.Wiki.BackupDir)
	}
	if cfg.Server.HTTP.Port != 9000 {
		t.Errorf("server.http.port = %d, want 9000", cfg.Server.HTTP.Port)
	}
	if !cfg.Wiki.SerializeUpdates {
		t.Error("wiki.serialize_updates = false, want true")
	}
}

func TestLoader_LoadEnv_SkipsSectionNames(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    port: 8080
`)
	t.Setenv("TW5KEEP_SERVER", "localhost:8080")
	t.Setenv("TW5KEEP_CONFIG", "/etc/tw5keep/config.yaml")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTP.Port != 8080 {
		t.Errorf("server.http.port = %d, want 8080 from file", cfg.Server.HTTP.Port)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"TW5KEEP_SERVER__HTTP__PORT", "server.http.port"},
		{"TW5KEEP_WIKI__BACKUP_DIR", "wiki.backup_dir"},
		{"TW5KEEP_LOG__LEVEL", "log.level"},
		{"TW5KEEP_SERVER", ""},
		{"TW5KEEP_CONFIG", ""},
		{"TW5KEEP_WIKI_FILE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envKey(tt.name); got != tt.want {
				t.Errorf("envKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	err := l.LoadMap(map[string]any{
		"server.http.address": "10.0.0.1",
		"wiki.file":           "/tmp/index.html",
	})
	if err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Server.HTTP.Address != "10.0.0.1" {
		t.Errorf("Server.HTTP.Address = %q, want 10.0.0.1", cfg.Server.HTTP.Address)
	}
	if cfg.Wiki.File != "/tmp/index.html" {
		t.Errorf("Wiki.File = %q", cfg.Wiki.File)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
wiki:
  file: /file/index.html
  backup_dir: /file/backups
server:
  http:
    address: 127.0.0.1
    port: 8080
  shutdown_timeout: 5s
`)
	t.Setenv("TW5KEEP_SERVER__HTTP__PORT", "9000")
	t.Setenv("TW5KEEP_WIKI__BACKUP_DIR", "/env/backups")

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"wiki.backup_dir": "/flag/backups"}),
	)

	var cfg testConfig
	cfg.Server.HTTP.Address = "0.0.0.0"
	cfg.Wiki.SerializeUpdates = true
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file over default", cfg.Server.HTTP.Address, "127.0.0.1"},
		{"env over file", cfg.Server.HTTP.Port, 9000},
		{"override over env", cfg.Wiki.BackupDir, "/flag/backups"},
		{"file only", cfg.Wiki.File, "/file/index.html"},
		{"default kept", cfg.Wiki.SerializeUpdates, true},
		{"duration parsed", cfg.Server.ShutdownTimeout, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoader_Load_BadFile(t *testing.T) {
	path := writeConfig(t, "wiki: [unclosed")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	p := mapProvider{"a.b": 1}
	if _, err := p.ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want %v", err, ErrReadBytesNotSupported)
	}

	m, err := p.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	inner, ok := m["a"].(map[string]any)
	if !ok {
		t.Fatalf("Read() = %v, want nested map under a", m)
	}
	if inner["b"] != 1 {
		t.Errorf("a.b = %v, want 1", inner["b"])
	}
}
