package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogFilePathDefaultsToWorkdir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := logFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	realTmp, _ := filepath.EvalSymlinks(tmpDir)
	realDir, _ := filepath.EvalSymlinks(filepath.Dir(got))
	if realDir != filepath.Join(realTmp, defaultDir) {
		t.Fatalf("unexpected log dir: %s", realDir)
	}
	if filepath.Base(got) != defaultFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
}

func TestReleaseModeWritesFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "orders.log"})
	log.Info("order_created")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "orders.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if !strings.Contains(string(content), "order_created") {
		t.Fatalf("log file missing message: %s", string(content))
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug message")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		raw   string
		debug bool
		want  zap.AtomicLevel
	}{
		{raw: "", debug: true, want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{raw: "", debug: false, want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{raw: "warn", debug: true, want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{raw: "bogus", debug: false, want: zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tc := range cases {
		got := resolveLevel(tc.raw, tc.debug)
		if got.Level() != tc.want.Level() {
			t.Fatalf("resolveLevel(%q, %v) = %s, want %s", tc.raw, tc.debug, got.Level(), tc.want.Level())
		}
	}
}
