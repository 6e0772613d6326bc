// Package fileutil holds the byte-level file helpers used when staging
// wallpapers and writing generator output.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
	}
	return nil
}

// CopyFile streams src to dst with mode 0o644, truncating dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// ReplaceFile copies src over dst atomically: the bytes go to a temporary
// file in dst's directory which is verified against the source and renamed
// into place. When dst already holds identical bytes nothing is written and
// changed is false.
func ReplaceFile(src, dst string) (changed bool, err error) {
	srcSum, srcSize, err := digest(src)
	if err != nil {
		return false, fmt.Errorf("read source: %w", err)
	}
	if dstSum, dstSize, err := digest(dst); err == nil && dstSize == srcSize && bytes.Equal(dstSum, srcSum) {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("read destination: %w", err)
	}

	if err := EnsureParent(dst); err != nil {
		return false, err
	}
	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	return true, writeAtomic(dst, 0o644, func(w io.Writer) error {
		hasher := sha256.New()
		written, err := io.Copy(io.MultiWriter(w, hasher), in)
		if err != nil {
			return err
		}
		if written != srcSize {
			return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
		}
		if !bytes.Equal(hasher.Sum(nil), srcSum) {
			return errors.New("copy hash mismatch: source changed during copy")
		}
		return nil
	})
}

// WriteFileAtomic writes data to path through a temporary file and rename.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	if err := EnsureParent(path); err != nil {
		return err
	}
	return writeAtomic(path, mode, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(path string, mode os.FileMode, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if err := fill(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func digest(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	hasher := sha256.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return nil, 0, err
	}
	return hasher.Sum(nil), n, nil
}
