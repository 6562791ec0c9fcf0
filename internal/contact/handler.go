package contact

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/cobaemon/portfolio/pkg/email"
)

// Handler accepts contact form submissions and relays them by email to the
// configured recipient. Sending is synchronous: a delivery failure surfaces
// as 502 rather than being silently dropped.
type Handler struct {
	recipient string
	mailer    email.EmailSender
	log       *slog.Logger
}

func NewHandler(recipient string, mailer email.EmailSender, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{recipient: recipient, mailer: mailer, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := Form{
		FullName:    r.PostFormValue("full_name"),
		Email:       r.PostFormValue("email"),
		PhoneNumber: r.PostFormValue("phone_number"),
		Message:     r.PostFormValue("message"),
	}

	if errs := form.Validate(); errs != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
		return
	}

	if err := h.mailer.SendEmail(r.Context(), email.SendEmailParams{
		SendTo:   h.recipient,
		Subject:  fmt.Sprintf("Contact form: %s", form.FullName),
		BodyHTML: renderBody(form),
		Tag:      "contact-form",
	}); err != nil {
		h.log.ErrorContext(r.Context(), "contact email failed", slog.Any("error", err))
		http.Error(w, "Failed to submit form", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Form submission successful"))
}

func renderBody(form Form) string {
	return fmt.Sprintf(
		"<p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Phone:</strong> %s</p><p>%s</p>",
		html.EscapeString(form.FullName),
		html.EscapeString(form.Email),
		html.EscapeString(form.PhoneNumber),
		html.EscapeString(form.Message),
	)
}
