package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
)

//go:embed *.json
var fs embed.FS

// SupportedLanguages lists the locales shipped with the binary
var SupportedLanguages = []string{"en", "fr"}

// translations stores flattened keys: "en" -> "toast.lead.converted.title" -> "Lead converted"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	defaultLang  = "en"
)

// Load reads every embedded locale file.
func Load() error {
	mutex.Lock()
	defer mutex.Unlock()

	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var result map[string]interface{}
		if err := json.Unmarshal(content, &result); err != nil {
			return fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", result, flat)
		translations[lang] = flat
		log.Printf("Loaded locale: %s (%d keys)", lang, len(flat))
	}

	return nil
}

// flatten recursively flattens a nested map into dot-notation keys.
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		newKey := k
		if prefix != "" {
			newKey = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]interface{}:
			flatten(newKey, child, result)
		case string:
			result[newKey] = child
		default:
			result[newKey] = fmt.Sprintf("%v", child)
		}
	}
}

// IsSupported reports whether lang has a shipped locale
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Match picks a supported language from an Accept-Language header value
func Match(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if IsSupported(base) {
			return base
		}
	}
	return defaultLang
}

// T retrieves a translation using the language stored in ctx.
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate looks key up in lang, then the default language, then returns the key itself.
func Translate(lang, key string, args ...map[string]interface{}) string {
	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return format(val, args...)
		}
	}

	if lang != defaultLang {
		if trans, ok := translations[defaultLang]; ok {
			if val, ok := trans[key]; ok {
				return format(val, args...)
			}
		}
	}

	return key
}

// Has reports whether key exists in the default language
func Has(key string) bool {
	mutex.RLock()
	defer mutex.RUnlock()
	_, ok := translations[defaultLang][key]
	return ok
}

// format replaces {var} placeholders with values from args if present.
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 {
		return text
	}

	for k, v := range args[0] {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return text
}

type contextKey string

const LocaleContextKey contextKey = "locale"

// GetLocale extracts the locale set by the locale middleware, defaulting to "en".
func GetLocale(ctx context.Context) string {
	if val := ctx.Value(LocaleContextKey); val != nil {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return defaultLang
}

// WithLocale returns a copy of ctx carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}
