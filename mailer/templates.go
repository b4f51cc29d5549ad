package mailer

import (
	"embed"
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
)

const templatesDir = "templates"

//go:embed templates/*.tpl
var templateFS embed.FS

// ErrTemplateNotFound is returned when rendering an unknown template.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateData is handed to subject and body templates.
type TemplateData struct {
	Recipient string
	Link      string
	Code      string
}

// EmailTemplate pairs a subject and body template.
type EmailTemplate struct {
	Subject *template.Template
	Body    *template.Template
}

// TemplateRegistry holds the mail templates keyed by name.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]EmailTemplate
}

// NewTemplateRegistry returns an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]EmailTemplate),
	}
}

// DefaultTemplates returns a registry loaded with the embedded templates.
func DefaultTemplates() (*TemplateRegistry, error) {
	tr := NewTemplateRegistry()
	if err := tr.Load(templateFS, templatesDir); err != nil {
		return nil, err
	}
	return tr, nil
}

// Load parses every <name>_subject.tpl / <name>_body.tpl pair under dir.
func (tr *TemplateRegistry) Load(fsys fs.FS, dir string) error {
	subjects, err := fs.Glob(fsys, path.Join(dir, "*_subject.tpl"))
	if err != nil {
		return err
	}

	for _, subjectFile := range subjects {
		name := strings.TrimSuffix(path.Base(subjectFile), "_subject.tpl")

		subjectContent, err := fs.ReadFile(fsys, subjectFile)
		if err != nil {
			return err
		}

		bodyContent, err := fs.ReadFile(fsys, path.Join(dir, name+"_body.tpl"))
		if err != nil {
			return err
		}

		if err := tr.Register(name, string(subjectContent), string(bodyContent)); err != nil {
			return err
		}
	}

	return nil
}

// Register parses and stores a template pair, replacing any previous one.
func (tr *TemplateRegistry) Register(name, subject, body string) error {
	subjectTmpl, err := template.New(name + "_subject").Parse(strings.TrimSpace(subject))
	if err != nil {
		return err
	}

	bodyTmpl, err := template.New(name + "_body").Parse(body)
	if err != nil {
		return err
	}

	tr.mu.Lock()
	tr.templates[name] = EmailTemplate{
		Subject: subjectTmpl,
		Body:    bodyTmpl,
	}
	tr.mu.Unlock()
	return nil
}

// Render executes the named template pair.
func (tr *TemplateRegistry) Render(name string, data TemplateData) (*Email, error) {
	tr.mu.RLock()
	tmpl, ok := tr.templates[name]
	tr.mu.RUnlock()
	if !ok {
		return nil, ErrTemplateNotFound
	}

	var subject strings.Builder
	if err := tmpl.Subject.Execute(&subject, data); err != nil {
		return nil, err
	}

	var body strings.Builder
	if err := tmpl.Body.Execute(&body, data); err != nil {
		return nil, err
	}

	return NewEmail(subject.String(), body.String()), nil
}
