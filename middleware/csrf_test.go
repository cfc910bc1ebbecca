package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
)

func TestGetCSRFToken(t *testing.T) {
	e := echo.New()

	t.Run("Issued by the CSRF middleware", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var token string
		h := echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			TokenLookup: "header:X-CSRF-Token,form:_csrf",
			CookieName:  "_csrf",
		})(func(c echo.Context) error {
			token = GetCSRFToken(c)
			return c.NoContent(http.StatusOK)
		})

		assert.NoError(t, h(c))
		assert.NotEmpty(t, token)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "_csrf="+token)
	})

	t.Run("Missing", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		assert.Equal(t, "", GetCSRFToken(c))
	})

	t.Run("Wrong type", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		c.Set(echomiddleware.DefaultCSRFConfig.ContextKey, 123)
		assert.Equal(t, "", GetCSRFToken(c))
	})
}
