package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	yaml "gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// ErrUnterminatedFrontMatter is returned when a document opens a frontmatter
// block but never closes it.
var ErrUnterminatedFrontMatter = errors.New("frontmatter: opening delimiter found but closing delimiter is missing")

// ParseFrontMatter extracts the scalar fields of the YAML frontmatter block
// at the start of raw. Documents without a block yield an empty map. Lists
// and nested mappings, such as tags, are skipped.
func ParseFrontMatter(raw []byte) (map[string]string, error) {
	block, ok, err := splitFrontMatter(string(raw))
	if err != nil || !ok {
		return map[string]string{}, err
	}

	var fields map[string]any
	err = yaml.Unmarshal([]byte(block), &fields)
	if err != nil {
		return map[string]string{}, fmt.Errorf("frontmatter: %w", err)
	}

	fm := make(map[string]string, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case time.Time:
			fm[key] = v.Format(time.RFC3339)
		default:
			// Fails for lists and maps.
			if s, err := cast.ToStringE(v); err == nil {
				fm[key] = s
			}
		}
	}

	return fm, nil
}

func splitFrontMatter(raw string) (string, bool, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	lines := strings.SplitAfter(raw, "\n")
	if !isFence(lines[0]) {
		return "", false, nil
	}

	for i := 1; i < len(lines); i++ {
		if isFence(lines[i]) {
			return strings.Join(lines[1:i], ""), true, nil
		}
	}

	return "", false, ErrUnterminatedFrontMatter
}

func isFence(line string) bool {
	return strings.TrimRight(line, " \t\r\n") == frontMatterFence
}
