package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
cache_dir = %q
bind = "127.0.0.1:0"

[gemini]
api_key = "test"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "cache"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output := runCommand(t, "config", "init", "--path", target)
	if !strings.Contains(output, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an existing config without --overwrite")
	}
}

func TestSeedAndNames(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output := runCommand(t, "seed", "--config", cfgPath)
	if !strings.Contains(output, "Seeded 31 names") {
		t.Fatalf("unexpected seed output: %s", output)
	}

	output = runCommand(t, "seed", "--config", cfgPath)
	if !strings.Contains(output, "nothing to do") {
		t.Fatalf("second seed should be a no-op: %s", output)
	}

	output = runCommand(t, "names", "--config", cfgPath)
	if !strings.Contains(output, "Emma") || !strings.Contains(output, "31 names stored") {
		t.Fatalf("unexpected names output: %s", output)
	}
}

func TestConfigShowMasksCredential(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output := runCommand(t, "config", "show", "--config", cfgPath)
	if strings.Contains(output, `'test'`) || strings.Contains(output, `"test"`) {
		t.Fatalf("credential leaked: %s", output)
	}
	if !strings.Contains(output, "<set>") {
		t.Fatalf("masked credential missing: %s", output)
	}
}
