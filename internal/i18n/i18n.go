// Package i18n translates user-facing strings for the supported locales.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/freelog/freelog/internal/log"
)

// Locale is a supported language.
type Locale string

const (
	English    Locale = "en"
	Portuguese Locale = "pt"

	DefaultLocale = English
)

// Locales lists the supported locales, default first.
var Locales = []Locale{English, Portuguese}

// LocaleNames maps each locale to its name in that language.
var LocaleNames = map[Locale]string{
	English:    "English",
	Portuguese: "Português",
}

// IsValidLocale reports whether s names a supported locale.
func IsValidLocale(s string) bool {
	for _, l := range Locales {
		if string(l) == s {
			return true
		}
	}
	return false
}

// Dictionary is a nested translation table addressed by dot paths.
type Dictionary map[string]any

//go:embed locales/*.json
var localeFS embed.FS

var (
	loadOnce sync.Once
	dicts    map[Locale]Dictionary
	loadErr  error
)

func load() {
	dicts = make(map[Locale]Dictionary, len(Locales))
	for _, l := range Locales {
		data, err := localeFS.ReadFile("locales/" + string(l) + ".json")
		if err != nil {
			loadErr = fmt.Errorf("failed to read %s dictionary: %w", l, err)
			return
		}
		var d Dictionary
		if err := json.Unmarshal(data, &d); err != nil {
			loadErr = fmt.Errorf("failed to parse %s dictionary: %w", l, err)
			return
		}
		dicts[l] = d
	}
}

// Get returns the dictionary for locale, falling back to the default locale
// for unsupported values.
func Get(locale Locale) (Dictionary, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	if d, ok := dicts[locale]; ok {
		return d, nil
	}
	return dicts[DefaultLocale], nil
}

// T looks up key in dict and interpolates values into it. A missing or
// non-string key returns the key itself.
func T(dict Dictionary, key string, values map[string]string) string {
	var cur any = map[string]any(dict)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			log.Debug(log.CatApp, "Translation key not found", "key", key)
			return key
		}
		if cur, ok = m[part]; !ok {
			log.Debug(log.CatApp, "Translation key not found", "key", key)
			return key
		}
	}
	s, ok := cur.(string)
	if !ok {
		log.Debug(log.CatApp, "Translation key is not a string", "key", key)
		return key
	}
	if values == nil {
		return s
	}
	return Interpolate(s, values)
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Interpolate replaces {name} placeholders with values. Placeholders with no
// value, or an empty one, are left in place.
func Interpolate(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		if v := values[match[1:len(match)-1]]; v != "" {
			return v
		}
		return match
	})
}

// FormatRelativeTime describes how long before now t was.
func FormatRelativeTime(now, t time.Time, dict Dictionary) string {
	seconds := int(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return T(dict, "time.just_now", nil)
	case seconds < 3600:
		return plural(dict, "time.minutes_ago", seconds/60)
	case seconds < 86400:
		return plural(dict, "time.hours_ago", seconds/3600)
	default:
		return plural(dict, "time.days_ago", seconds/86400)
	}
}

func plural(dict Dictionary, key string, n int) string {
	if n != 1 {
		key += "_plural"
	}
	return T(dict, key, map[string]string{"count": strconv.Itoa(n)})
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Portuguese})

// NegotiateLocale picks the best supported locale for an Accept-Language
// header, or DefaultLocale when nothing matches.
func NegotiateLocale(acceptLanguage string) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(parseTags(acceptLanguage)...)
	if confidence == language.No {
		return DefaultLocale
	}
	return Locales[index]
}

func parseTags(header string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}
	return tags
}
