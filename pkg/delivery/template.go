// pkg/delivery/template.go

package delivery

import (
	"bytes"
	"fmt"
	"text/template"
)

// Default subject and body used when none are configured.
const (
	DefaultSubject = "Invoice {{.Number}} from {{.Company}}"
	DefaultBody    = `Dear {{.CustomerName}},

Please find attached invoice {{.Number}} dated {{.Date}} for a total of {{.Total}}.

Regards,
{{.Company}}
`
)

// TemplateData is what subject and body templates can reference.
type TemplateData struct {
	Number       string
	Date         string
	CustomerName string
	Total        string
	Company      string
}

// Template renders the subject and body of invoice messages.
type Template struct {
	subject *template.Template
	body    *template.Template
}

// NewTemplate parses subject and body, falling back to the defaults for
// empty values.
func NewTemplate(subject, body string) (*Template, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if body == "" {
		body = DefaultBody
	}
	st, err := template.New("subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("parse mail subject: %w", err)
	}
	bt, err := template.New("body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse mail body: %w", err)
	}
	return &Template{subject: st, body: bt}, nil
}

// Message builds a message to recipient carrying attachment.
func (t *Template) Message(recipient string, data TemplateData, attachment Attachment) (Message, error) {
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render mail subject: %w", err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render mail body: %w", err)
	}
	return Message{
		To:         recipient,
		Subject:    subject.String(),
		Body:       body.String(),
		Attachment: attachment,
	}, nil
}
