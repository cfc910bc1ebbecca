package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/services/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// LangCookieName stores the chosen interface language
const LangCookieName = "lang"

var localeMatcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Configured default
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.IsSupported(lang) {
					lang = i18n.DefaultLanguage()
				}
				setLanguageCookie(c, lang, cfg != nil && cfg.IsProduction())
			} else if cookie, err := c.Cookie(LangCookieName); err == nil && i18n.IsSupported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				lang = matchAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)
			ctx := context.WithValue(c.Request().Context(), i18n.LocaleContextKey, lang)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// matchAcceptLanguage picks the best supported locale for an Accept-Language
// header, or the default when nothing matches.
func matchAcceptLanguage(header string) string {
	if header == "" {
		return i18n.DefaultLanguage()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.DefaultLanguage()
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return i18n.DefaultLanguage()
	}
	if idx == 1 {
		return "en"
	}
	return "es"
}

func setLanguageCookie(c echo.Context, lang string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return i18n.DefaultLanguage()
}
