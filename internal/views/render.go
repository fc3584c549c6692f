package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("page").
		Funcs(template.FuncMap{"markdown": renderMarkdown}).
		ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pageTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PageData is the view model handed to the page template
type PageData struct {
	AppTitle string
	Nav      []NavItem
	Page     *Page
}

// ErrorData is the view model of the error page
type ErrorData struct {
	AppTitle string
	Nav      []NavItem
	Status   int
	Message  string
}

// RenderPage writes a full dashboard page for p
func RenderPage(w io.Writer, appTitle string, p *Page) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "page.html", PageData{
		AppTitle: appTitle,
		Nav:      Nav(p.View),
		Page:     p,
	})
}

// RenderError writes the error page shown when a view cannot be rendered
func RenderError(w io.Writer, appTitle string, status int, message string) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "error.html", ErrorData{
		AppTitle: appTitle,
		Nav:      Nav(-1),
		Status:   status,
		Message:  message,
	})
}
