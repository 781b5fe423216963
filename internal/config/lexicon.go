package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// LoadLexicon reads the word-list override file. An empty path or a
// missing file falls back to the built-in Indonesian defaults; a present
// but unparsable file is a configuration error.
func LoadLexicon(path string) (domain.Lexicon, error) {
	if path == "" {
		return domain.DefaultLexicon(), nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultLexicon(), nil
	}
	if err != nil {
		return domain.Lexicon{}, fmt.Errorf("read lexicon file: %w", err)
	}

	var lex domain.Lexicon
	if err := yaml.Unmarshal(raw, &lex); err != nil {
		return domain.Lexicon{}, fmt.Errorf("parse lexicon file: %w", err)
	}
	return lex.Normalize(), nil
}
