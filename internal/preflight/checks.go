package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"wpmeta/internal/staging"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableTarget passes when path is a writable directory or a file,
// or when it does not exist yet but its nearest existing ancestor is a
// writable directory it can be created in.
func CheckWritableTarget(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return CheckDirectoryAccess(name, path)
	case err == nil:
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case !errors.Is(err, fs.ErrNotExist):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSourceTree verifies the source root is a readable directory holding
// at least one manifest anywhere below it.
func CheckSourceTree(name, root, manifestName string) Result {
	if root == "" {
		return Result{Name: name, Detail: "not configured (set paths.source_dir or pass --src)"}
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", root)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", root, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", root)}
	}
	if err := unix.Access(root, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", root, err)}
	}

	count := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == manifestName {
			count++
		}
		return nil
	})
	if walkErr != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", root, walkErr)}
	}
	if count == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no %s found)", root, manifestName)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d manifests)", root, count)}
}

// CheckStagingLock verifies no other build currently holds the staging root.
func CheckStagingLock(ctx context.Context, name, root string) Result {
	lockPath := filepath.Join(root, staging.LockFileName)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: "staging root not created yet"}
	}
	lock, err := staging.Acquire(ctx, root, 0)
	if err != nil {
		if errors.Is(err, staging.ErrLocked) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (held by another build)", lockPath)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", lockPath, err)}
	}
	if err := lock.Release(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: release: %v)", lockPath, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (free)", lockPath)}
}
