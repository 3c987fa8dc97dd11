package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "custom")
	if got := getEnv("TEST_SET_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %q, want custom", got)
	}

	os.Unsetenv("TEST_UNSET_VAR")
	if got := getEnv("TEST_UNSET_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		def    bool
		want   bool
		setEnv bool
	}{
		{"Unset", "", true, true, false},
		{"True", "true", false, true, true},
		{"False", "false", true, false, true},
		{"One", "1", false, true, true},
		{"Garbage", "banana", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_" + tt.name
			if tt.setEnv {
				t.Setenv(key, tt.value)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvBool(key, tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", key, tt.def, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	base := t.TempDir()

	created := filepath.Join(base, "new", "nested")
	if err := ensureDirectory(created, "test"); err != nil {
		t.Fatalf("ensureDirectory() error: %v", err)
	}
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Error("Expected directory to be created")
	}

	// Existing directory is fine
	if err := ensureDirectory(created, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir error: %v", err)
	}

	// A file where a directory should be is an error
	file := filepath.Join(base, "afile")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("Expected error for path that is a file")
	}
}

func TestTestWriteAccess(t *testing.T) {
	if err := testWriteAccess(t.TempDir()); err != nil {
		t.Errorf("testWriteAccess() error on writable dir: %v", err)
	}

	if err := testWriteAccess(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for nonexistent dir")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/compress", "api/compress"},
		{"/api/download/{filename}", "api/download"},
		{"/healthz", "healthz"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadConfigCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputDir := filepath.Join(base, "out")

	t.Setenv("INPUT_DIR", inputDir)
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("PORT", "18080")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.InputDir != inputDir || config.OutputDir != outputDir {
		t.Errorf("Config dirs = %q/%q, want %q/%q", config.InputDir, config.OutputDir, inputDir, outputDir)
	}
	if config.Port != "18080" {
		t.Errorf("Port = %q, want 18080", config.Port)
	}
	if config.FFmpegBin != "ffmpeg" || config.FFprobeBin != "ffprobe" {
		t.Errorf("Tool defaults = %q/%q", config.FFmpegBin, config.FFprobeBin)
	}

	for _, dir := range []string{inputDir, outputDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected %s to be created", dir)
		}
	}
}

func TestLoadConfigFailsOnUnusableDirectory(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INPUT_DIR", blocker)
	t.Setenv("OUTPUT_DIR", filepath.Join(base, "out"))

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected LoadConfig to fail when the input path is a file")
	}
}
