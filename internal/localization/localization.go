// Package localization serves the bot's user-facing texts from embedded JSON
// catalogs, one file per language.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultLanguage is used for missing languages and missing keys.
const DefaultLanguage = "fr"

//go:embed locales/*.json
var embedded embed.FS

// Localizer looks texts up by language and key.
type Localizer struct {
	messages map[string]map[string]string
	fallback string
}

// New loads the embedded catalogs.
func New() (*Localizer, error) {
	return Load(embedded, "locales")
}

// Load reads every <lang>.json under dir of fsys.
func Load(fsys fs.FS, dir string) (*Localizer, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	l := &Localizer{messages: make(map[string]map[string]string), fallback: DefaultLanguage}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		var msgs map[string]string
		if err := json.Unmarshal(content, &msgs); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		l.messages[strings.TrimSuffix(name, ".json")] = msgs
	}
	if _, ok := l.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("locale %q not found", DefaultLanguage)
	}
	return l, nil
}

// Has reports whether lang has a catalog.
func (l *Localizer) Has(lang string) bool {
	_, ok := l.messages[lang]
	return ok
}

// Languages lists the loaded languages.
func (l *Localizer) Languages() []string {
	out := make([]string, 0, len(l.messages))
	for lang := range l.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Get returns the text for key in lang, falling back to the default language
// and finally to the key itself.
func (l *Localizer) Get(lang, key string) string {
	if msg, ok := l.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := l.messages[l.fallback][key]; ok {
		return msg
	}
	return key
}

// Format is Get followed by fmt.Sprintf.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.Get(lang, key), args...)
}
