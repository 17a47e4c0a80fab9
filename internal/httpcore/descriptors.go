package httpcore

import (
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed templates/*.xml
var descriptorFS embed.FS

// DescriptorInfo fills the device descriptor template.
type DescriptorInfo struct {
	FriendlyName    string
	Manufacturer    string
	ManufacturerURL string
	ModelName       string
	ModelNumber     string
	UUID            string
	BaseURL         string
	SOAPPath        string
}

// Descriptors serves the static rootDesc.xml/ContentDirectory.xml/
// ConnectionManager.xml documents, following the teacher's
// embed.FS-plus-text/template rendering idiom.
type Descriptors struct {
	Info      DescriptorInfo
	templates map[string]*template.Template
	Log       *slog.Logger
}

// requiredDescriptorTemplates lists the templates NewDescriptors insists on
// finding in templates/, so a packaging mistake fails at startup rather than
// surfacing as a 500 on the first client request.
var requiredDescriptorTemplates = []string{
	"rootDesc.xml",
	"ContentDirectory.xml",
	"ConnectionManager.xml",
}

func NewDescriptors(info DescriptorInfo, log *slog.Logger) (*Descriptors, error) {
	if log == nil {
		log = slog.Default()
	}
	tmpls, err := loadDescriptorTemplates(descriptorFS)
	if err != nil {
		return nil, err
	}
	for _, name := range requiredDescriptorTemplates {
		if _, ok := tmpls[name]; !ok {
			return nil, fmt.Errorf("httpcore: missing required descriptor template: %s", name)
		}
	}
	return &Descriptors{Info: info, templates: tmpls, Log: log}, nil
}

func loadDescriptorTemplates(tfs embed.FS) (map[string]*template.Template, error) {
	entries, err := tfs.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read descriptor templates: %w", err)
	}

	out := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := tfs.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read descriptor template %s: %w", entry.Name(), err)
		}
		out[entry.Name()] = template.Must(template.New(entry.Name()).Parse(string(content)))
	}
	return out, nil
}

// ServeRootDesc serves GET/HEAD /rootDesc.xml.
func (d *Descriptors) ServeRootDesc(w http.ResponseWriter, r *http.Request) {
	info := d.Info
	info.BaseURL = "http://" + r.Host
	d.render(w, r, "rootDesc.xml", info)
}

// ServeContentDirectorySCPD serves GET/HEAD /ContentDirectory.xml.
func (d *Descriptors) ServeContentDirectorySCPD(w http.ResponseWriter, r *http.Request) {
	d.render(w, r, "ContentDirectory.xml", nil)
}

// ServeConnectionManagerSCPD serves GET/HEAD /ConnectionManager.xml.
func (d *Descriptors) ServeConnectionManagerSCPD(w http.ResponseWriter, r *http.Request) {
	d.render(w, r, "ConnectionManager.xml", nil)
}

func (d *Descriptors) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tmpl, ok := d.templates[name]
	if !ok {
		d.Log.Error("descriptor template not found", "name", name)
		writeError(w, http.StatusInternalServerError, "template not found")
		return
	}

	contentType := "text/xml; charset=utf-8"
	if ext := filepath.Ext(name); ext != ".xml" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))
	w.Header().Set("EXT", "")

	if r.Method == http.MethodHead {
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		d.Log.Error("execute descriptor template", "name", name, "err", err)
	}
}
