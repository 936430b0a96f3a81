package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	opts := Default()
	if opts.Debug || opts.PrintTokens || opts.Color != "auto" || opts.MaxStack != 1024 || opts.Encoding != "utf-8" {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lox.toml", `
debug = true
print-tokens = true
color = "never"
instruction-limit = 500
`)
	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !opts.Debug || !opts.PrintTokens || opts.Color != "never" || opts.InstructionLimit != 500 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.MaxStack != 1024 {
		t.Fatalf("unset keys should keep defaults, got max stack %d", opts.MaxStack)
	}
	if opts.Path != path {
		t.Fatalf("expected path %q, got %q", path, opts.Path)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lox.yml", "max_stack: 64\nencoding: shift_jis\nverbosity: 2\n")
	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.MaxStack != 64 || opts.Encoding != "shift_jis" || opts.Verbosity != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		msg     string
	}{
		{"unknown extension", "lox.json", "{}", "unsupported config format"},
		{"bad toml", "bad.toml", "debug = ", "parse error"},
		{"bad yaml", "bad.yaml", "debug: [", "parse error"},
		{"bad color", "color.toml", `color = "pink"`, "invalid color mode"},
		{"bad encoding", "enc.yaml", "encoding: latin1", "unsupported encoding"},
		{"negative limit", "limit.toml", "instruction-limit = -1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected error containing %q, got %v", tt.msg, err)
			}
		})
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opts, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("expected no error without config, got %v", err)
	}
	if opts != nil {
		t.Skipf("found unrelated config at %s", opts.Path)
	}

	writeFile(t, root, "lox.yaml", "debug: true\n")
	opts, err = FindAndLoad(nested)
	if err != nil || opts == nil || !opts.Debug {
		t.Fatalf("expected yaml config from parent, got %+v, %v", opts, err)
	}

	writeFile(t, filepath.Join(root, "a"), "lox.toml", "color = \"always\"\n")
	opts, err = FindAndLoad(nested)
	if err != nil || opts == nil || opts.Color != "always" || opts.Debug {
		t.Fatalf("expected nearest toml config, got %+v, %v", opts, err)
	}
}
