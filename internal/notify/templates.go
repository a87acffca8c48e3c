package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Email subjects.
const (
	WelcomeSubject      = "Thanks for joining in!"
	CancellationSubject = "Good bye!"
)

type templateData struct {
	Name string
}

// emailTemplate renders the plain-text and HTML bodies of one kind of email.
type emailTemplate struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

var (
	welcomeTemplate = emailTemplate{
		subject: WelcomeSubject,
		text: template.Must(template.New("welcome.txt").Parse(
			"Welcome to the app, {{.Name}}! Let me know how you get along with the app.")),
		html: htmltemplate.Must(htmltemplate.New("welcome.html").Parse(
			"<p>Welcome to the app, {{.Name}}! Let me know how you get along with the app.</p>")),
	}

	cancellationTemplate = emailTemplate{
		subject: CancellationSubject,
		text: template.Must(template.New("cancellation.txt").Parse(
			"Dear {{.Name}}! Please, let us know if there is anything we could have done to keep you onboard!")),
		html: htmltemplate.Must(htmltemplate.New("cancellation.html").Parse(
			"<p>Dear {{.Name}}! Please, let us know if there is anything we could have done to keep you onboard!</p>")),
	}
)

// render builds a message for to. The HTML body escapes the name; the
// plain-text body keeps it verbatim.
func (t emailTemplate) render(from, to Address) (Message, error) {
	data := templateData{Name: to.Name}

	var text bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s: %w", t.text.Name(), err)
	}

	var html bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s: %w", t.html.Name(), err)
	}

	return Message{
		From:      from,
		To:        to,
		Subject:   t.subject,
		PlainText: text.String(),
		HTML:      html.String(),
	}, nil
}
