package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/language"
)

// Bundle holds the UI strings of each language as flat message ids, e.g.
// "nav.create" or "result.action.download". The fallback language is the
// reference catalog every other language is checked against.
type Bundle struct {
	langs    []string // fallback first
	messages map[string]map[string]string
	matcher  language.Matcher
}

// Load reads <dir>/<lang>.json for each language. The fallback catalog is
// required. Other catalogs may be absent, but any key they define must also
// exist in the fallback catalog.
func Load(dir, fallback string, langs []string) (*Bundle, error) {
	order := []string{fallback}
	for _, l := range langs {
		if !slices.Contains(order, l) {
			order = append(order, l)
		}
	}

	b := &Bundle{messages: make(map[string]map[string]string, len(order))}
	tags := make([]language.Tag, 0, len(order))
	for _, l := range order {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: language %q: %w", l, err)
		}
		msgs, err := readCatalog(filepath.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: fallback catalog: %w", err)
			}
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if l != fallback {
			if stray := extraKeys(msgs, b.messages[fallback]); len(stray) > 0 {
				return nil, fmt.Errorf("i18n: %s defines keys missing from %s: %v", l, fallback, stray)
			}
		}
		b.langs = append(b.langs, l)
		b.messages[l] = msgs
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func readCatalog(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msgs map[string]string
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("i18n: decode %s: %w", filepath.Base(path), err)
	}
	return msgs, nil
}

// extraKeys lists the keys of have that ref lacks, sorted.
func extraKeys(have, ref map[string]string) []string {
	var out []string
	for k := range have {
		if _, ok := ref[k]; !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Fallback returns the reference language.
func (b *Bundle) Fallback() string { return b.langs[0] }

// IsSupported reports whether a catalog was loaded for lang.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// Missing lists fallback keys that lang does not translate. Those keys render
// in the fallback language.
func (b *Bundle) Missing(lang string) []string {
	msgs, ok := b.messages[lang]
	if !ok {
		return nil
	}
	return extraKeys(b.messages[b.Fallback()], msgs)
}

// T returns the message for key in lang, then in the fallback language, and
// finally the key itself.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.messages[lang][key]; ok {
		return v
	}
	if v, ok := b.messages[b.Fallback()][key]; ok {
		return v
	}
	return key
}

// Resolve picks the loaded language that best matches an Accept-Language
// header. Entries with q=0 are ignored.
func (b *Bundle) Resolve(acceptLanguage string) string {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return b.Fallback()
	}
	_, idx, conf := b.matcher.Match(desired...)
	if conf == language.No {
		return b.Fallback()
	}
	return b.langs[idx]
}
