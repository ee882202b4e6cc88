package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ZaguanLabs/ghostreader"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"gopkg.in/yaml.v3"
)

// Bundle serves translations from local message files.
//
// Message files are named "<anything>.<lang>.<format>" (e.g. active.de.toml)
// with format one of toml, yaml, yml or json.
type Bundle struct {
	bundle *i18n.Bundle
	strict bool
}

// NewBundle creates an empty bundle whose default language is defaultLang.
func NewBundle(defaultLang string) (*Bundle, error) {
	tag, err := ghostreader.ParseLocale(defaultLang)
	if err != nil {
		return nil, &ghostreader.ConfigurationError{
			Message: fmt.Sprintf("invalid default language %q: %v", defaultLang, err),
		}
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	return &Bundle{bundle: bundle}, nil
}

// SetStrict makes Translate fail for keys that only resolve through the
// default language. Used when another fallback fills those gaps.
func (b *Bundle) SetStrict(strict bool) {
	b.strict = strict
}

// LoadFile loads a single message file.
func (b *Bundle) LoadFile(path string) error {
	if _, err := b.bundle.LoadMessageFile(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every supported message file in dir (non-recursive).
func (b *Bundle) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isMessageFile(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Parse loads messages from raw bytes. The name determines language and format.
func (b *Bundle) Parse(data []byte, name string) error {
	if _, err := b.bundle.ParseMessageFileBytes(data, name); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// AddMessages registers simple one-form messages for a locale.
func (b *Bundle) AddMessages(locale string, messages map[string]string) error {
	tag, err := ghostreader.ParseLocale(locale)
	if err != nil {
		return err
	}

	list := make([]*i18n.Message, 0, len(messages))
	for id, other := range messages {
		list = append(list, &i18n.Message{ID: id, Other: other})
	}
	return b.bundle.AddMessages(tag, list...)
}

// Translate localizes key for locale. Values and Count from opts are passed
// through as template data and plural count.
func (b *Bundle) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	key = ghostreader.NormalizeKey(optsScope(opts), key)

	cfg := &i18n.LocalizeConfig{MessageID: key}
	if opts != nil {
		if len(opts.Values) > 0 {
			cfg.TemplateData = opts.Values
		}
		cfg.PluralCount = opts.Count
		if opts.Default != "" {
			cfg.DefaultMessage = &i18n.Message{ID: key, Other: opts.Default}
		}
	}

	localizer := i18n.NewLocalizer(b.bundle, strings.ReplaceAll(locale, "_", "-"))
	text, tag, err := localizer.LocalizeWithTag(cfg)
	if err == nil && b.strict && !ghostreader.SameLanguage(locale, tag.String()) {
		return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key}
	}
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) {
			return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key}
		}
		return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key, Cause: err}
	}
	return text, nil
}

// AvailableLocales returns the languages with loaded messages.
func (b *Bundle) AvailableLocales() []string {
	tags := b.bundle.LanguageTags()
	locales := make([]string, 0, len(tags))
	for _, tag := range tags {
		locales = append(locales, tag.String())
	}
	sort.Strings(locales)
	return locales
}

// I18n returns the underlying go-i18n bundle.
func (b *Bundle) I18n() *i18n.Bundle {
	return b.bundle
}

func isMessageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func optsScope(opts *Options) []string {
	if opts == nil {
		return nil
	}
	return opts.Scope
}

// Verify Bundle implements Fallback
var (
	_ Fallback                 = (*Bundle)(nil)
	_ ghostreader.LocaleLister = (*Bundle)(nil)
)
