package artifacts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/swaybuild/internal/logfields"
)

// ErrSourceMissing indicates that the build did not produce the expected directory.
var ErrSourceMissing = errors.New("artifact source not found")

// Layout creates one output directory per artifact name below root and returns them keyed by name.
func Layout(root string, names []string) (map[string]string, error) {
	dirs := make(map[string]string, len(names))
	for _, name := range names {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		dirs[name] = dir
	}
	slog.Debug("Output layout ready", logfields.Path(root), slog.Int("directories", len(dirs)))
	return dirs, nil
}

// Relocate moves the directory src into destDir, keeping its base name, and
// returns the final path. An existing entry of the same name in destDir is
// replaced so repeated runs converge on the same result.
func Relocate(src, destDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return "", fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, src)
	}

	dst := filepath.Join(destDir, filepath.Base(src))
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across filesystems; fall back to copy and remove.
		slog.Debug("Rename failed, copying instead", logfields.Path(src), logfields.Error(err))
		if err := CopyDir(src, dst); err != nil {
			_ = os.RemoveAll(dst)
			return "", fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
		}
		if err := os.RemoveAll(src); err != nil {
			return "", fmt.Errorf("failed to remove %s after copy: %w", src, err)
		}
	}
	return dst, nil
}

// CopyDir recursively copies a directory tree, preserving file modes and symlinks.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return err
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies a single file from src to dst
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}
