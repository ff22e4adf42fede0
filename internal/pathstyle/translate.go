// Package pathstyle classifies interpreters by the path convention they
// accept and translates native Windows paths into the /{drive}/{rest} form
// that MSYS2/Cygwin interpreter builds expect.
package pathstyle

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quantmind-br/pyruntime/internal/core"
)

var (
	posixFormRe = regexp.MustCompile(`^/([A-Za-z])(?:/|$)`)
	driveFormRe = regexp.MustCompile(`^([A-Za-z]):(?:/+(.*))?$`)
)

// Translate converts a path into canonical POSIX-emulation form
// /{lowercased-drive}/{rest}. Accepted inputs are paths already in that
// form, native drive-letter paths with either slash direction, and relative
// paths that resolve to a drive-letter path. Anything else (notably UNC
// paths) fails with *core.PathTranslationError rather than passing through.
func Translate(path string) (string, error) {
	return translate(path, func(p string) (string, error) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		return abs, nil
	})
}

// translate takes the absolute-path resolver as a parameter so the
// relative-input rule is testable on any host.
func translate(path string, abs func(string) (string, error)) (string, error) {
	if out, ok := convert(path); ok {
		return out, nil
	}

	resolved, err := abs(path)
	if err == nil {
		if out, ok := convert(resolved); ok {
			return out, nil
		}
	}

	return "", &core.PathTranslationError{Path: path}
}

// convert applies the two direct rules: already-posix and drive-letter.
func convert(path string) (string, bool) {
	if m := posixFormRe.FindStringSubmatch(path); m != nil {
		return "/" + strings.ToLower(m[1]) + path[2:], true
	}

	normalized := strings.ReplaceAll(path, `\`, "/")
	if m := driveFormRe.FindStringSubmatch(normalized); m != nil {
		out := "/" + strings.ToLower(m[1])
		if m[2] != "" {
			out += "/" + m[2]
		}
		return out, true
	}

	return "", false
}

// IsPosixForm reports whether a path is already in /{drive}/{rest} shape.
func IsPosixForm(path string) bool {
	return posixFormRe.MatchString(path)
}
