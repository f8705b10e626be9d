package widget

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"

	"github.com/i474232898/weather-widget/internal/weather"
)

//go:embed templates/*.html
var viewsFS embed.FS

var widgetTmpl *template.Template

// loadTemplatesFromFS parses the widget templates from fsys/dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	widgetTmpl, err = template.ParseFS(sub, "*.html")
	return err
}

// LoadTemplates loads the embedded widget templates. Call during startup; if it
// returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// View is the template model for one render of the widget.
type View struct {
	Query       string
	Error       string
	Loading     bool
	HasReading  bool
	Temperature string
	Condition   string
	Location    string
}

// Render flattens state into a View, composing the reading's messages for the
// given local hour of day.
func Render(state ViewState, hour int) View {
	v := View{
		Query:   state.Query,
		Error:   state.Error,
		Loading: state.Loading,
	}
	if state.Reading != nil {
		m := weather.Compose(*state.Reading, hour)
		v.HasReading = true
		v.Temperature = m.Temperature
		v.Condition = m.Condition
		v.Location = m.Location
	}
	return v
}

// RenderPage executes the widget page into w.
func RenderPage(w io.Writer, v View) error {
	if widgetTmpl == nil {
		return errors.New("widget template not loaded: call widget.LoadTemplates during startup")
	}
	return widgetTmpl.ExecuteTemplate(w, "widget.html", v)
}
