package integration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/project"
	"github.com/examples-hub/hubrun/internal/runner"
)

func TestConfigFixture(t *testing.T) {
	t.Parallel()
	cfg, warnings, err := config.LoadAndValidate(filepath.Join(fixturesDir(), "config", "hubrun.yaml"))
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	build, err := runner.CapabilityFromConfig(config.CapabilityBuild, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if build.Concurrency != 2 || build.Timeout != 90*time.Second || build.Cleanup {
		t.Errorf("build = %+v", build)
	}

	install, err := runner.CapabilityFromConfig(config.CapabilityInstall, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if install.Retry.MaxAttempts != 3 {
		t.Errorf("install attempts = %d, want 3", install.Retry.MaxAttempts)
	}

	opts := project.OptionsFromConfig(cfg)
	if opts.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", opts.MaxDepth)
	}
	root := filepath.Join(fixturesDir(), "monorepo")
	if rt := project.DetectRuntime("libs/util", filepath.Join(root, "libs", "util"), opts.Runtimes); rt != project.RuntimeBun {
		t.Errorf("libs/util runtime = %s, want bun", rt)
	}
}

func TestInvalidConfigFixture(t *testing.T) {
	t.Parallel()
	_, _, err := config.LoadAndValidate(filepath.Join(fixturesDir(), "config", "invalid.yaml"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := huberrors.GetExitCode(err); code != huberrors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, huberrors.ExitConfigError)
	}
}
