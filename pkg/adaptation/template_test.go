package adaptation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTemplateSourceBuiltinDefault(t *testing.T) {
	ts, err := NewTemplateSource("")
	if err != nil {
		t.Fatalf("NewTemplateSource: %v", err)
	}
	defer ts.Close()

	current := ts.Current()
	for _, marker := range DefaultValidationRules().RequiredMarkers {
		if !strings.Contains(current, marker) {
			t.Errorf("built-in template missing marker %q", marker)
		}
	}
}

func TestTemplateSourceLoadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("【角色】文件模板"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts, err := NewTemplateSource(path)
	if err != nil {
		t.Fatalf("NewTemplateSource: %v", err)
	}
	defer ts.Close()

	if got := ts.Current(); got != "【角色】文件模板" {
		t.Errorf("Current = %q, want file contents", got)
	}
}

func TestTemplateSourceRejectsMissingOrEmptyFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewTemplateSource(filepath.Join(dir, "absent.txt")); err == nil {
		t.Error("missing template file accepted")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTemplateSource(empty); err == nil {
		t.Error("empty template file accepted")
	}
}

func TestTemplateSourceReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("【角色】第一版"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts, err := NewTemplateSource(path)
	if err != nil {
		t.Fatalf("NewTemplateSource: %v", err)
	}
	defer ts.Close()

	if err := os.WriteFile(path, []byte("【角色】第二版"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if ts.Current() == "【角色】第二版" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("template not reloaded, Current = %q", ts.Current())
		case <-time.After(50 * time.Millisecond):
		}
	}
}
