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

// translations stores flattened keys: "es" -> "nav.casos" -> "Casos"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	defaultLang  = "es"
)

// SupportedLanguages are the locales shipped as embedded JSON files
var SupportedLanguages = []string{"es", "en"}

// SetDefaultLanguage changes the fallback locale. Unsupported codes are ignored.
func SetDefaultLanguage(lang string) {
	if !IsSupported(lang) {
		log.Printf("[WARNING] Unsupported default language %q, keeping %q", lang, defaultLang)
		return
	}
	mutex.Lock()
	defaultLang = lang
	mutex.Unlock()
}

// DefaultLanguage returns the fallback locale
func DefaultLanguage() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return defaultLang
}

// IsSupported reports whether lang has a shipped locale file
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Load reads every embedded locale file into flattened key maps.
func Load() error {
	mutex.Lock()
	defer mutex.Unlock()

	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
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

// T translates key into the locale carried by ctx, falling back to the default
// language and then to the key itself. Placeholders like {roles} are replaced
// from the optional args map.
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	lang := GetLocale(ctx)
	return Translate(lang, key, args...)
}

// Translate retrieves a translation for a specific language code.
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

// format replaces {var} placeholders with values from args if present.
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 {
		return text
	}

	vars := args[0]
	for k, v := range vars {
		placeholder := "{" + k + "}"
		valStr := fmt.Sprintf("%v", v)
		text = strings.ReplaceAll(text, placeholder, valStr)
	}
	return text
}

type contextKey string

// LocaleContextKey is the request context key the locale middleware sets
const LocaleContextKey contextKey = "locale"

// GetLocale extracts the locale from the context, defaulting to DefaultLanguage.
func GetLocale(ctx context.Context) string {
	if ctx != nil {
		if str, ok := ctx.Value(LocaleContextKey).(string); ok && str != "" {
			return str
		}
	}
	return DefaultLanguage()
}
