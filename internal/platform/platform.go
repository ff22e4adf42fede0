// Package platform identifies the host path convention once, so that
// shell-flavor heuristics do not spread across components.
package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// Kind is the host platform's path convention.
type Kind int

const (
	// Posix is any non-Windows host.
	Posix Kind = iota
	// WindowsNative is Windows with the usual drive-letter paths.
	WindowsNative
	// WindowsPosixEmulation is Windows running under an MSYS2/Cygwin layer,
	// which lays out managed environments the POSIX way despite the OS.
	WindowsPosixEmulation
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case WindowsNative:
		return "windows"
	case WindowsPosixEmulation:
		return "windows-posix-emulation"
	default:
		return "posix"
	}
}

// Current reports the host platform kind, computed once per process.
var Current = sync.OnceValue(func() Kind {
	return detect(runtime.GOOS, os.Getenv)
})

// detect is separated from Current so tests can feed synthetic environments.
func detect(goos string, getenv func(string) string) Kind {
	if goos != "windows" {
		return Posix
	}
	if getenv("MSYSTEM") != "" {
		return WindowsPosixEmulation
	}
	ostype := strings.ToLower(getenv("OSTYPE"))
	if strings.Contains(ostype, "msys") || strings.Contains(ostype, "cygwin") {
		return WindowsPosixEmulation
	}
	return WindowsNative
}

// BinDirName returns the scripts subdirectory of a virtual environment:
// Scripts on native Windows, bin everywhere else (including MSYS2/Cygwin,
// whose venvs use the POSIX layout even on a Windows host).
func BinDirName(k Kind) string {
	if k == WindowsNative {
		return "Scripts"
	}
	return "bin"
}

// ExeSuffix returns the executable filename suffix for the platform.
// Only native Windows appends .exe.
func ExeSuffix(k Kind) string {
	if k == WindowsNative {
		return ".exe"
	}
	return ""
}
