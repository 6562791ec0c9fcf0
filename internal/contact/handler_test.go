package contact_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/contact"
	"github.com/cobaemon/portfolio/pkg/email"
)

type stubMailer struct {
	sent []email.SendEmailParams
	err  error
}

func (m *stubMailer) SendEmail(_ context.Context, params email.SendEmailParams) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, params)
	return nil
}

func submit(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func validValues() url.Values {
	return url.Values{
		"full_name":    {"Taro Yamada"},
		"email":        {"taro@example.com"},
		"phone_number": {"08012345678"},
		"message":      {"Hello there"},
	}
}

func TestContactHandler_Success(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{}
	h := contact.NewHandler("owner@example.com", mailer, nil)

	w := submit(t, h, validValues())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Form submission successful", w.Body.String())

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "owner@example.com", mailer.sent[0].SendTo)
	assert.Contains(t, mailer.sent[0].BodyHTML, "Taro Yamada")
}

func TestContactHandler_ValidationErrors(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{}
	h := contact.NewHandler("owner@example.com", mailer, nil)

	form := validValues()
	form.Set("phone_number", "080-1234-5678")

	w := submit(t, h, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "phone_number")
	assert.Empty(t, mailer.sent)
}

func TestContactHandler_MissingPhone(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{}
	h := contact.NewHandler("owner@example.com", mailer, nil)

	form := validValues()
	form.Del("phone_number")

	w := submit(t, h, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Phone number is required.")
	assert.Empty(t, mailer.sent)
}

func TestContactHandler_SendFailure(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{err: errors.New("smtp down")}
	h := contact.NewHandler("owner@example.com", mailer, nil)

	w := submit(t, h, validValues())
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestContactHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := contact.NewHandler("owner@example.com", &stubMailer{}, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestContactHandler_EscapesHTML(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{}
	h := contact.NewHandler("owner@example.com", mailer, nil)

	form := validValues()
	form.Set("message", `<script>alert("x")</script>`)

	w := submit(t, h, form)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, mailer.sent, 1)
	assert.NotContains(t, mailer.sent[0].BodyHTML, "<script>")
}
