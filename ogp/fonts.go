package ogp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.tabichina.jp/site/log"
	"go.uber.org/zap"
)

// ErrFontsMissing is returned when one of the font files cannot be read.
// Every page depends on them, so it aborts the whole run.
var ErrFontsMissing = errors.New("required font files are missing")

// Fonts holds the raw font files. They are parsed by the [Rasterizer].
type Fonts struct {
	Regular []byte
	Bold    []byte
}

type FontLoader struct {
	fs      *afero.Afero
	regular string
	bold    string
	log     *zap.SugaredLogger
}

func NewFontLoader(fs afero.Fs, dir, regular, bold string) *FontLoader {
	return &FontLoader{
		fs:      &afero.Afero{Fs: fs},
		regular: filepath.Join(dir, regular),
		bold:    filepath.Join(dir, bold),
		log:     log.S().Named("fonts"),
	}
}

func (l *FontLoader) Paths() (regular, bold string) {
	return l.regular, l.bold
}

// ValidateFonts reports whether both font files can be read.
func (l *FontLoader) ValidateFonts() bool {
	for _, filename := range []string{l.regular, l.bold} {
		f, err := l.fs.Open(filename)
		if err != nil {
			return false
		}
		_ = f.Close()
	}

	return true
}

// LoadFonts reads both font files into memory.
func (l *FontLoader) LoadFonts() (*Fonts, error) {
	regular, err := l.load(l.regular)
	if err != nil {
		return nil, err
	}

	bold, err := l.load(l.bold)
	if err != nil {
		return nil, err
	}

	return &Fonts{Regular: regular, Bold: bold}, nil
}

func (l *FontLoader) load(filename string) ([]byte, error) {
	data, err := l.fs.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontsMissing, err)
	}

	if mtype := mimetype.Detect(data); !strings.HasPrefix(mtype.String(), "font/") {
		l.log.Warnf("%s does not look like a font file (detected %s)", filename, mtype.String())
	}

	return data, nil
}
