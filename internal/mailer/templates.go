package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/MKhiriev/go-auth-portal/models"
)

// ConfirmationSubject is the subject line of confirmation emails.
const ConfirmationSubject = "Confirm your email address"

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	confirmationText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/confirmation.txt.tmpl"))
	confirmationHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/confirmation.html.tmpl"))
)

// message is a rendered email ready to be handed to a backend.
type message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

func renderConfirmation(mail models.ConfirmationMail) (message, error) {
	var text, html bytes.Buffer

	if err := confirmationText.Execute(&text, mail); err != nil {
		return message{}, fmt.Errorf("%w: %w", ErrRenderingTemplate, err)
	}
	if err := confirmationHTML.Execute(&html, mail); err != nil {
		return message{}, fmt.Errorf("%w: %w", ErrRenderingTemplate, err)
	}

	return message{
		To:      mail.To,
		Subject: ConfirmationSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
