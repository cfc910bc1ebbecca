package services

import (
	"os"
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/services/i18n"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := i18n.Load(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestLoadTemplate(t *testing.T) {
	data := ConfirmationEmailData{Email: "ana@example.com", ConfirmLink: "http://x/confirm?token=abc", ExpiresIn: "24h"}

	t.Run("Load Localized Template", func(t *testing.T) {
		html, text, err := loadTemplate("confirm_signup", "es", data)
		assert.NoError(t, err)
		assert.Contains(t, html, "http://x/confirm?token=abc")
		assert.Contains(t, text, "Hola")
	})

	t.Run("Load English Template", func(t *testing.T) {
		_, text, err := loadTemplate("confirm_signup", "en", data)
		assert.NoError(t, err)
		assert.Contains(t, text, "ana@example.com")
		assert.NotContains(t, text, "Hola")
	})

	t.Run("Fallback to default language", func(t *testing.T) {
		_, text, err := loadTemplate("confirm_signup", "fr", data)
		assert.NoError(t, err)
		assert.Contains(t, text, "Hola")
	})

	t.Run("Template Not Found", func(t *testing.T) {
		_, _, err := loadTemplate("non_existent", "es", data)
		assert.Error(t, err)
	})
}

func TestBuildConfirmationEmail(t *testing.T) {
	email, err := BuildConfirmationEmail("ana@example.com", "http://x/confirm?token=abc", "es")
	assert.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, email.To)
	assert.Equal(t, i18n.Translate("es", "email.subject.confirm_signup"), email.Subject)
	assert.NotEqual(t, "email.subject.confirm_signup", email.Subject)
	assert.Contains(t, email.TextBody, "http://x/confirm?token=abc")
}

func TestSendEmailTestMode(t *testing.T) {
	cfg := testConfig()
	err := SendEmail(cfg, &Email{To: []string{"a@b.com"}, Subject: "s", TextBody: "t"})
	assert.NoError(t, err)
}

func TestSendEmailRequiresAPIKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false}
	err := SendEmail(cfg, &Email{To: []string{"a@b.com"}, Subject: "s", TextBody: "t"})
	assert.ErrorContains(t, err, "RESEND_API_KEY")
}

func TestSendEmailAsyncCopiesMessage(t *testing.T) {
	received := make(chan *Email, 1)
	mailer := func(cfg *config.Config, email *Email) error {
		received <- email
		return nil
	}

	original := &Email{To: []string{"a@b.com"}, Subject: "hola"}
	SendEmailAsync(testConfig(), original, mailer)
	original.To[0] = "changed@b.com"

	select {
	case got := <-received:
		assert.Equal(t, "hola", got.Subject)
		assert.NotSame(t, original, got)
	case <-time.After(time.Second):
		t.Fatal("mailer was not called")
	}
}
