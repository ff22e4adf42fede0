// Package extract unpacks toolchain archives into the storage root,
// normalizes the top-level directory to the canonical install name and
// stamps a version marker.
package extract

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"

	"github.com/quantmind-br/pyruntime/internal/core"
	"github.com/quantmind-br/pyruntime/internal/fsops"
)

// MarkerFile is the version marker written into the install directory.
const MarkerFile = "version.txt"

// Extractor unpacks downloaded archives.
type Extractor struct {
	fs  afero.Fs
	log zerolog.Logger
}

// NewExtractor creates an Extractor over the given filesystem.
func NewExtractor(fs afero.Fs, log zerolog.Logger) *Extractor {
	return &Extractor{fs: fs, log: log}
}

// Extract unpacks archivePath into storageRoot, renames the archive's single
// top-level directory to installName, writes the version marker and removes
// the archive. A missing archive is a no-op success: it is the
// already-installed fast path, not an error. An archive with anything other
// than exactly one top-level directory fails with *core.ExtractionError.
func (e *Extractor) Extract(archivePath, storageRoot, installName, version string) error {
	if !fsops.Exists(e.fs, archivePath) {
		e.log.Debug().Str("archive", archivePath).Msg("no archive present, skipping extraction")
		return nil
	}

	installDir := filepath.Join(storageRoot, installName)
	if err := fsops.RemoveTree(e.fs, installDir); err != nil {
		return err
	}

	entries, err := e.unpack(archivePath, storageRoot)
	if err != nil {
		return err
	}

	top, err := singleTopLevel(archivePath, entries)
	if err != nil {
		return err
	}

	if top != installName {
		if err := e.fs.Rename(filepath.Join(storageRoot, top), installDir); err != nil {
			return fmt.Errorf("normalize install directory: %w", err)
		}
	}

	if err := fsops.WriteFileString(e.fs, filepath.Join(installDir, MarkerFile), version, 0o644); err != nil {
		return err
	}

	if err := e.fs.Remove(archivePath); err != nil {
		return fmt.Errorf("remove archive: %w", err)
	}

	e.log.Info().
		Str("archive", archivePath).
		Str("install_dir", installDir).
		Str("version", version).
		Int("entries", len(entries)).
		Msg("archive extracted")
	return nil
}

// unpack dispatches on the archive extension and returns every entry's
// relative path as it streamed in.
func (e *Extractor) unpack(archivePath, destDir string) ([]string, error) {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return e.unpackZip(archivePath, destDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return e.unpackTarball(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			return gz, nil
		})
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return e.unpackTarball(archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	default:
		return nil, &core.ExtractionError{Archive: archivePath, Reason: "unsupported archive format"}
	}
}

func (e *Extractor) unpackZip(archivePath, destDir string) ([]string, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
	}

	var entries []string
	for _, zf := range zr.File {
		if err := validateEntryPath(zf.Name); err != nil {
			return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
		}
		entries = append(entries, zf.Name)

		target := filepath.Join(destDir, zf.Name)
		if zf.FileInfo().IsDir() {
			if err := e.fs.MkdirAll(target, zf.Mode().Perm()|0o100); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", zf.Name, err)
		}
		err = e.writeEntry(target, rc, zf.Mode().Perm())
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", zf.Name, err)
		}
	}

	return entries, nil
}

func (e *Extractor) unpackTarball(archivePath, destDir string, decompress func(io.Reader) (io.Reader, error)) ([]string, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dr, err := decompress(f)
	if err != nil {
		return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
	}
	if closer, ok := dr.(io.Closer); ok {
		defer closer.Close()
	}

	tr := tar.NewReader(dr)
	var entries []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
		}

		if err := validateEntryPath(header.Name); err != nil {
			return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
		}
		entries = append(entries, header.Name)

		target := filepath.Join(destDir, header.Name)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := e.fs.MkdirAll(target, os.FileMode(header.Mode).Perm()|0o100); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
		case tar.TypeReg:
			if err := e.writeEntry(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return nil, fmt.Errorf("extract %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err := validateLinkTarget(header.Name, header.Linkname); err != nil {
				return nil, &core.ExtractionError{Archive: archivePath, Reason: err.Error()}
			}
			if linker, ok := e.fs.(afero.Linker); ok {
				if err := linker.SymlinkIfPossible(header.Linkname, target); err != nil {
					return nil, fmt.Errorf("create symlink %s: %w", header.Name, err)
				}
			} else {
				e.log.Debug().Str("entry", header.Name).Msg("filesystem does not support symlinks, entry skipped")
			}
		default:
			// Block/char devices and fifos have no business in a toolchain archive.
			continue
		}
	}

	return entries, nil
}

func (e *Extractor) writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if mode == 0 {
		mode = 0o644
	}

	out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// validateEntryPath rejects entries that would escape the destination
// (absolute paths, drive-letter paths, .. traversal).
func validateEntryPath(name string) error {
	if name == "" {
		return fmt.Errorf("empty entry name")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.Contains(name, ":") {
		return fmt.Errorf("absolute entry path %q", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("entry path %q escapes destination", name)
	}
	return nil
}

// validateLinkTarget rejects symlinks pointing outside the archive tree.
func validateLinkTarget(entry, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %q has absolute target %q", entry, linkname)
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(entry), linkname))
	if resolved == ".." || strings.HasPrefix(resolved, ".."+string(filepath.Separator)) {
		return fmt.Errorf("symlink %q escapes destination", entry)
	}
	return nil
}

// singleTopLevel enforces the exactly-one-top-level-directory contract and
// returns that directory's name. It derives the set from every recorded
// entry rather than trusting entry ordering.
func singleTopLevel(archivePath string, entries []string) (string, error) {
	tops := make(map[string]struct{})
	for _, entry := range entries {
		clean := filepath.Clean(entry)
		first := clean
		if i := strings.IndexRune(clean, filepath.Separator); i >= 0 {
			first = clean[:i]
		}
		if first != "." && first != "" {
			tops[first] = struct{}{}
		}
	}

	if len(tops) != 1 {
		return "", &core.ExtractionError{
			Archive: archivePath,
			Reason:  fmt.Sprintf("expected exactly one top-level directory, found %d", len(tops)),
		}
	}
	for top := range tops {
		return top, nil
	}
	return "", nil
}
