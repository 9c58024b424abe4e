// Package web renders the translator's HTML pages.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/ai-translator/web/internal/controller"
	"github.com/ai-translator/web/internal/translate"
)

//go:embed templates/*.html
var templateFS embed.FS

// IntroPage is the one-time splash screen.
type IntroPage struct {
	Style          template.CSS
	RefreshSeconds int
}

// MainPage is the two-column translator screen.
type MainPage struct {
	Style      template.CSS
	SourceText string
	Result     string
	Languages  []translate.Language
	Selected   string // target language code
	Engine     string
	Outcome    *controller.Outcome
}

// Renderer executes the embedded templates. The optional stylesheet is read
// on every render so edits show up without a restart.
type Renderer struct {
	tmpl      *template.Template
	stylePath string
}

func NewRenderer(stylePath string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, stylePath: stylePath}, nil
}

// Style returns the stylesheet contents verbatim, or "" when there is none.
func (r *Renderer) Style() template.CSS {
	if r.stylePath == "" {
		return ""
	}
	data, err := os.ReadFile(r.stylePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[web] stylesheet %s unreadable: %v", r.stylePath, err)
		}
		return ""
	}
	return template.CSS(data)
}

// Intro renders the splash page. The refresh fires one second after the
// intro timer so the transition is stored before the browser reloads.
func (r *Renderer) Intro(w http.ResponseWriter, duration time.Duration) error {
	secs := int(math.Ceil(duration.Seconds())) + 1
	return r.render(w, "intro.html", IntroPage{
		Style:          r.Style(),
		RefreshSeconds: secs,
	})
}

func (r *Renderer) Main(w http.ResponseWriter, page MainPage) error {
	page.Style = r.Style()
	return r.render(w, "index.html", page)
}

// render buffers the output so a template error never leaves a half page.
func (r *Renderer) render(w http.ResponseWriter, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, err := buf.WriteTo(w)
	return err
}
