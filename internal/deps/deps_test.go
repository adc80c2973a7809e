package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeBin puts executable shell scripts named after progs on an isolated PATH
func fakeBin(t *testing.T, progs ...string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	for _, name := range progs {
		script := "#!/bin/sh\necho \"" + name + " version 6.1.1\"\necho \"second line\"\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir)
}

func TestCheck(t *testing.T) {
	fakeBin(t, "ffmpeg")

	status := Check(FFmpeg)
	if !status.Installed {
		t.Fatal("ffmpeg in PATH but Installed=false")
	}
	if !strings.HasSuffix(status.Path, "ffmpeg") {
		t.Errorf("Path = %s", status.Path)
	}
	if status.Version != "ffmpeg version 6.1.1" {
		t.Errorf("Version = %q, want first line of output", status.Version)
	}
}

func TestCheck_NotInstalled(t *testing.T) {
	fakeBin(t)

	status := CheckWhisperCli()
	if status.Installed || status.Path != "" || status.Version != "" {
		t.Errorf("status = %+v, want zero value", status)
	}
}

func TestCheckAll(t *testing.T) {
	fakeBin(t, "ffmpeg", "ffprobe")

	results := CheckAll(false)
	if len(results) != 5 {
		t.Fatalf("got %d results", len(results))
	}
	if err := RequireAll(results); err != nil {
		t.Errorf("RequireAll() error = %v", err)
	}

	results = CheckAll(true)
	err := RequireAll(results)
	if err == nil || !strings.Contains(err.Error(), "whisper-cli") {
		t.Errorf("RequireAll() with local recognizer error = %v", err)
	}
}

func TestRequireAll_ListsEveryMissing(t *testing.T) {
	fakeBin(t)

	err := RequireAll(CheckAll(false))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ffmpeg, ffprobe") {
		t.Errorf("error = %v", err)
	}
	if strings.Contains(err.Error(), "notify-send") {
		t.Error("optional programs should not be required")
	}
}
