package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tartampluch/candela/internal/config"
)

const tmpSuffix = ".tmp"

// writeJSON encodes v and replaces path atomically: the document is written to
// a sibling temp file first and renamed over the target.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", config.JSONIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, buf.Bytes(), config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
	}
	return nil
}

// exists reports whether path names an existing file.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
