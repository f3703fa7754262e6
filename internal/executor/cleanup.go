package executor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// BuildOutputDirs are removed from a project after a successful build.
var BuildOutputDirs = []string{"dist", "build", ".next", ".output"}

// CleanBuildOutputs removes every build output directory under dir without
// descending into node_modules. It keeps going after a failed removal and
// returns all failures joined.
func CleanBuildOutputs(dir string) error {
	var errs []error
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			errs = append(errs, err)
			return nil
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		name := d.Name()
		if name == "node_modules" {
			return filepath.SkipDir
		}
		if isBuildOutput(name) {
			if err := os.RemoveAll(path); err != nil {
				errs = append(errs, err)
			}
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errors.Join(errs...)
}

func isBuildOutput(name string) bool {
	for _, n := range BuildOutputDirs {
		if n == name {
			return true
		}
	}
	return false
}
