package ogp

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.tabichina.jp/site/core"
	"go.tabichina.jp/site/log"
	"go.uber.org/zap"
)

type WriteResult struct {
	// URL is the public path of the image, e.g. /ogp/articles/foo-<hash>.png.
	URL string
	// Cached is true when the file already existed and nothing was rendered.
	Cached bool
}

// Writer stores images under content addressed names, so that a changed
// title produces a new URL and stale caches are never served.
type Writer struct {
	fs           *afero.Afero
	outputDir    string
	publicPrefix string
	log          *zap.SugaredLogger
}

func NewWriter(fs afero.Fs, outputDir, publicPrefix string) *Writer {
	return &Writer{
		fs:           &afero.Afero{Fs: fs},
		outputDir:    outputDir,
		publicPrefix: publicPrefix,
		log:          log.S().Named("writer"),
	}
}

// HashedPath inserts the title hash before the extension of base:
// articles/foo.png becomes articles/foo-<md5(title)>.png.
func HashedPath(base, title string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + core.Hash(title) + ext
}

// Write stores the image for base and title. render is only called when the
// target does not exist yet, or when force is set.
func (w *Writer) Write(base, title string, force bool, render func() ([]byte, error)) (WriteResult, error) {
	rel := HashedPath(base, title)
	res := WriteResult{URL: w.url(rel)}
	filename := filepath.Join(w.outputDir, rel)

	if !force {
		exists, err := w.fs.Exists(filename)
		if err != nil {
			return res, fmt.Errorf("failed to stat %s: %w", filename, err)
		}

		if exists {
			w.log.Debugw("image exists, skipping", "path", rel)
			res.Cached = true
			return res, nil
		}
	}

	data, err := render()
	if err != nil {
		return res, err
	}

	err = w.fs.MkdirAll(filepath.Dir(filename), 0777)
	if err != nil {
		return res, fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	err = w.fs.WriteFile(filename, data, 0644)
	if err != nil {
		return res, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	w.log.Debugw("image written", "path", rel, "bytes", len(data))
	return res, nil
}

func (w *Writer) url(rel string) string {
	return path.Join("/", w.publicPrefix, filepath.ToSlash(rel))
}
