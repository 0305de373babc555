// Package scan discovers audio files under a directory tree.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
)

// ErrMissingRoot means the source root does not exist or is not a directory.
// This aborts a run before any file is touched.
var ErrMissingRoot = errors.New("source directory not found")

// ErrNotFound means a single-file argument did not resolve to any discovered
// file under the root.
var ErrNotFound = errors.New("file not found under source directory")

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".mp4":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".wma":  true,
}

// IsAudioFile reports whether the file name carries a supported audio
// extension (case-insensitive).
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// AsMP3 swaps a relative path's extension for .mp3. All normalized output is
// MP3 regardless of the source container.
func AsMP3(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".mp3"
}

// Discover walks root depth-first and returns every supported audio file in
// lexical order, so indices and progress counts are reproducible across runs
// on an unchanged tree.
func Discover(root string) ([]models.AudioFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoot, root)
	}

	var files []models.AudioFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsAudioFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, models.AudioFile{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Count returns the number of discoverable audio files under root. A missing
// root counts as zero rather than an error, so reconciliation against a
// not-yet-created destination tree still produces a useful report.
func Count(root string) int {
	files, err := Discover(root)
	if err != nil {
		return 0
	}
	return len(files)
}

// ResolveSingle finds one named file under root. The argument may be a bare
// file name or a path suffix, matching how the batch tools have always been
// pointed at individual files.
func ResolveSingle(root, arg string) (models.AudioFile, error) {
	if !IsAudioFile(arg) {
		return models.AudioFile{}, fmt.Errorf("%w: %s is not a supported audio file", ErrNotFound, arg)
	}

	files, err := Discover(root)
	if err != nil {
		return models.AudioFile{}, err
	}

	base := filepath.Base(arg)
	for _, f := range files {
		if filepath.Base(f.Path) == base || strings.HasSuffix(f.Path, arg) {
			return f, nil
		}
	}
	return models.AudioFile{}, fmt.Errorf("%w: %s", ErrNotFound, arg)
}
