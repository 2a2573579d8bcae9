// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides the message catalog for dbterm. Translations are
// embedded YAML files loaded into a go-i18n bundle; English is the default
// and the fallback for any message missing from another locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   string
	locales   []string
)

// Init loads every embedded locale and activates lang.
func Init(lang string) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	var found []string
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			continue
		}
		if _, err := b.ParseMessageFileBytes(data, f.Name()); err != nil {
			continue
		}
		found = append(found, strings.TrimSuffix(f.Name(), path.Ext(f.Name())))
	}

	if lang == "" {
		lang = "en"
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	locales = found
	current = lang
	localizer = i18n.NewLocalizer(b, lang)
}

// SetLang changes the active language.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the active language code.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// GetAvailableLocales returns the embedded locale codes mapped to their
// self-describing display names ("de" -> "Deutsch").
func GetAvailableLocales() map[string]string {
	mu.RLock()
	codes := append([]string(nil), locales...)
	mu.RUnlock()
	if codes == nil {
		Init("en")
		return GetAvailableLocales()
	}

	out := make(map[string]string, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			out[code] = code
			continue
		}
		name := display.Self.Name(tag)
		if name == "" {
			name = code
		}
		out[code] = name
	}
	return out
}

// T translates messageID. Extra arguments are applied to the translated text
// with fmt.Sprintf. Unknown IDs are returned unchanged.
func T(messageID string, args ...any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		Init("en")
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}

	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
