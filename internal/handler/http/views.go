package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
)

//go:embed views/*.html
var viewFS embed.FS

// Page names, one per file under views/.
const (
	pageLogin            = "login"
	pageRegister         = "register"
	pageEmailSent        = "email_sent"
	pageUserConfirmation = "new_user_confirmation"
	pageHome             = "home"
)

var pageTitles = map[string]string{
	pageLogin:            "Log in",
	pageRegister:         "Register",
	pageEmailSent:        "Confirmation email sent",
	pageUserConfirmation: "Email confirmed",
	pageHome:             "Home",
}

type views struct {
	pages map[string]*template.Template
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageTitles))}
	for page := range pageTitles {
		tmpl, err := template.ParseFS(viewFS, "views/layout.html", "views/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRenderingView, page, err)
		}
		v.pages[page] = tmpl
	}
	return v, nil
}

// pageData is the model of every view.
type pageData struct {
	Title     string
	CSRFToken string
	// Username is the signed in user, empty for guests.
	Username string
	// Alert is a form-wide message shown under the form.
	Alert   string
	Account *models.Account

	input  map[string]string
	errors map[string][]string
}

// Value returns the previously submitted value of field.
func (p pageData) Value(field string) string {
	return p.input[field]
}

// FieldErrors returns the validation messages of field.
func (p pageData) FieldErrors(field string) []string {
	return p.errors[field]
}

// render executes page into a buffer first, so a failing template never
// leaves a half written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	log := logger.FromRequest(r)

	tmpl, ok := h.views.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	csrfToken, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		log.Err(err).Msg("error issuing csrf token")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data.CSRFToken = csrfToken
	data.Title = pageTitles[page]
	if data.Username == "" {
		if s, ok := h.sessions.Current(r); ok {
			data.Username = s.Username
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(fmt.Errorf("%w: %w", ErrRenderingView, err)).Str("page", page).Send()
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
