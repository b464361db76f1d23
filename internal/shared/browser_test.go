package shared

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCmd
	t.Cleanup(func() { getRuntime, startCmd = origRuntime, origStart })
	t.Setenv("BROWSER", "")

	var started *exec.Cmd
	startCmd = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	tc := []struct {
		goos string
		want string
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			if err := OpenBrowser("https://example.com"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filepath.Base(started.Path) != tt.want && started.Args[0] != tt.want {
				t.Errorf("expected %s, got %v", tt.want, started.Args)
			}
			if last := started.Args[len(started.Args)-1]; last != "https://example.com" {
				t.Errorf("expected URL as last argument, got %s", last)
			}
		})
	}

	t.Run("BROWSER override", func(t *testing.T) {
		t.Setenv("BROWSER", "my-browser")
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if started.Args[0] != "my-browser" {
			t.Errorf("expected my-browser, got %v", started.Args)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		startCmd = func(*exec.Cmd) error { return errors.New("boom") }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected start error to surface")
		}
	})
}
