package ogp

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.tabichina.jp/site/log"
	"go.uber.org/zap"
)

var hashedNameRegexp = regexp.MustCompile(`-[0-9a-f]{32}\.png$`)

// Pruner removes stale images left behind when a title changes. Only files
// that look like generated images are considered.
type Pruner struct {
	fs        *afero.Afero
	outputDir string
	log       *zap.SugaredLogger
}

func NewPruner(fs afero.Fs, outputDir string) *Pruner {
	return &Pruner{
		fs:        &afero.Afero{Fs: fs},
		outputDir: outputDir,
		log:       log.S().Named("prune"),
	}
}

// Prune deletes every generated image whose slash separated path, relative
// to the output directory, is not in keep. It returns the removed paths,
// sorted. With dryRun nothing is deleted.
func (p *Pruner) Prune(keep []string, dryRun bool) ([]string, error) {
	exists, err := p.fs.DirExists(p.outputDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}

	keepSet := lo.Keyify(keep)
	removed := []string{}

	err = p.fs.Walk(p.outputDir, func(filename string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !hashedNameRegexp.MatchString(info.Name()) {
			return nil
		}

		rel, err := filepath.Rel(p.outputDir, filename)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if _, ok := keepSet[rel]; ok {
			return nil
		}

		isPNG, err := p.isPNG(filename)
		if err != nil {
			return err
		}
		if !isPNG {
			p.log.Warnf("%s has an image name but is not a PNG, keeping it", rel)
			return nil
		}

		if !dryRun {
			err = p.fs.Remove(filename)
			if err != nil {
				return fmt.Errorf("failed to remove %s: %w", rel, err)
			}
		}

		p.log.Infow("pruned", "path", rel, "dryRun", dryRun)
		removed = append(removed, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(removed)
	return removed, nil
}

func (p *Pruner) isPNG(filename string) (bool, error) {
	f, err := p.fs.Open(filename)
	if err != nil {
		return false, err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return false, err
	}

	return mtype.Is("image/png"), nil
}
