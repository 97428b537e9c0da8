// Package i18n provides the dashboard's translated strings. Translation files
// are YAML maps from message id to text, embedded from locales/.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init loads the embedded translations and selects lang, falling back to
// English for unknown languages and missing messages. A locale file that
// fails to load is logged and skipped.
func Init(lang string) {
	b, err := loadBundle(localeFS, "locales")
	if err != nil {
		logging.Warnf("i18n: %v", err)
	}
	bundle = b
	localizer = i18n.NewLocalizer(bundle, lang, language.English.String())
}

// loadBundle parses every file in dir. It returns the bundle built from the
// files that parsed together with the errors of those that did not.
func loadBundle(fsys fs.FS, dir string) (*i18n.Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return b, fmt.Errorf("read locales: %w", err)
	}
	var errs []error
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, f.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("read locale %s: %w", f.Name(), err))
			continue
		}
		if _, err := b.ParseMessageFileBytes(data, f.Name()); err != nil {
			errs = append(errs, fmt.Errorf("parse locale %s: %w", f.Name(), err))
		}
	}
	return b, errors.Join(errs...)
}

// T translates messageID. An unknown id is returned unchanged.
func T(messageID string) string {
	return Tf(messageID, nil)
}

// Tf translates messageID, filling template fields from data.
func Tf(messageID string, data map[string]any) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// Languages lists the languages with an embedded translation file.
func Languages() []string {
	if bundle == nil {
		Init("en")
	}
	tags := bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// Supported reports whether lang has a translation. "" selects the default
// and is supported; region variants such as de-AT match their base language.
func Supported(lang string) bool {
	if lang == "" {
		return true
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	for _, l := range Languages() {
		if t, err := language.Parse(l); err == nil {
			if b, _ := t.Base(); b == base {
				return true
			}
		}
	}
	return false
}
