package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog overrides messages of a built-in locale. It is loaded from YAML or JSON:
//
//	locale: en
//	default: connection failed
//	default_with_code: "connection failed ({code})"
//	messages:
//	  "502": upstream unavailable
//
// Message keys are status codes; quoted and bare keys are both accepted.
type Catalog struct {
	Locale          string            `json:"locale" yaml:"locale"`
	Default         string            `json:"default" yaml:"default"`
	DefaultWithCode string            `json:"default_with_code" yaml:"default_with_code"`
	Messages        map[string]string `json:"messages" yaml:"messages"`
}

// LoadCatalog reads a catalog file, picking the decoder from the file extension.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Catalog{}, errors.New("messages file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open messages file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Catalog{}, fmt.Errorf("read messages file: %w", err)
	}

	return parseCatalog(raw, filepath.Ext(path))
}

func parseCatalog(data []byte, ext string) (Catalog, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var c Catalog
		err := d.fn(data, &c)
		if err == nil {
			return c, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
	}

	return Catalog{}, fmt.Errorf("messages file format not recognized (expected YAML or JSON): %w", errors.Join(errs...))
}

// NewFromCatalog builds a translator from the catalog's base locale with the
// catalog's overrides applied on top.
func NewFromCatalog(c Catalog) (*Translator, error) {
	t, err := New(c.Locale)
	if err != nil {
		return nil, err
	}

	for key, msg := range c.Messages {
		code, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("messages: invalid status code %q", key)
		}
		msg = strings.TrimSpace(msg)
		if msg == "" {
			return nil, fmt.Errorf("messages: empty message for status code %d", code)
		}
		t.table.messages[code] = msg
	}

	if def := strings.TrimSpace(c.Default); def != "" {
		t.table.defaultWithCode = withCodeTemplate(t.table, def)
		t.table.defaultMessage = def
	}
	if tmpl := strings.TrimSpace(c.DefaultWithCode); tmpl != "" {
		t.table.defaultWithCode = tmpl
	}

	return t, nil
}

// Load returns the built-in translator for locale, or, when path is set, the
// translator described by the catalog file at path.
func Load(locale, path string) (*Translator, error) {
	if strings.TrimSpace(path) == "" {
		return New(locale)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Locale) == "" {
		c.Locale = locale
	}
	return NewFromCatalog(c)
}

// withCodeTemplate substitutes def into the base locale's template so the code
// keeps the locale's separator ("连接错误500" vs "connection error 500").
func withCodeTemplate(base table, def string) string {
	if base.defaultMessage != "" && strings.Contains(base.defaultWithCode, base.defaultMessage) {
		return strings.Replace(base.defaultWithCode, base.defaultMessage, def, 1)
	}
	return def + " " + codePlaceholder
}
