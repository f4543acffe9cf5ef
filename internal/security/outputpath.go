// Package security guards the files written by csdcheck: diagnostic
// figures, HTML reports and the run history database.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its permitted root.
var ErrPathEscape = errors.New("security: path escapes permitted directory")

// canonical resolves symlinks in p. For a path that does not exist yet it
// resolves the nearest existing ancestor and re-attaches the remainder, so
// that a new file under a symlinked directory is judged by its real target.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rest, _ := filepath.Rel(dir, abs)
			return filepath.Join(resolved, rest), nil
		}
		if dir == filepath.Dir(dir) {
			return abs, nil
		}
	}
}

// ValidatePathWithinDirectory returns ErrPathEscape when filePath, after
// cleaning and symlink resolution, lies outside root. root must exist.
func ValidatePathWithinDirectory(filePath, root string) error {
	p, err := canonical(filePath)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	r, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	rel, err := filepath.Rel(r, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscape, filePath, root)
	}
	return nil
}

// ValidateOutputPath accepts paths under the working directory or the
// system temp directory.
func ValidateOutputPath(filePath string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	for _, root := range []string{cwd, os.TempDir()} {
		if ValidatePathWithinDirectory(filePath, root) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be under %s or %s", ErrPathEscape, filePath, cwd, os.TempDir())
}

// OutputFile builds dir/<sanitized stem><ext> and checks it stays in dir.
func OutputFile(dir, stem, ext string) (string, error) {
	p := filepath.Join(dir, SanitizeFilename(stem)+ext)
	if err := ValidatePathWithinDirectory(p, dir); err != nil {
		return "", err
	}
	return p, nil
}

// SanitizeFilename makes a safe filename from an arbitrary string such as a
// scenario name. Characters other than ASCII letters, digits, dot,
// underscore and dash become a single underscore; the result is capped at
// 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
