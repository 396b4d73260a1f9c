package views

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/app/models"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var files embed.FS

// Page names
const (
	PostList      = "post_list"
	PostDetail    = "post_detail"
	PostEdit      = "post_edit"
	PostDraftList = "post_draft_list"
	AddComment    = "add_comment"
	Login         = "login"
	Error         = "error"
)

// Page is the data handed to every template.
type Page struct {
	Title   string
	Actor   *models.User
	Posts   []*models.Post
	Post    *models.Post
	Form    interface{}
	Errors  map[string]string
	Message string
	Next    string
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

var strict = bluemonday.StrictPolicy()

var funcs = template.FuncMap{
	"formatTime": formatTime,
	"excerpt":    excerpt,
	// safe marks text that was sanitized before it was stored
	"safe": func(s string) template.HTML { return template.HTML(s) },
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PostList, PostDetail, PostEdit, PostDraftList, AddComment, Login, Error} {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page into w. Nothing is written if execution fails.
func (r *Renderer) Render(w io.Writer, name string, page *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func formatTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006, 15:04")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatTime(*t)
	default:
		return ""
	}
}

// excerpt reduces sanitized post text to a short plain text teaser.
func excerpt(s string) string {
	const limit = 300
	plain := strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	return string([]rune(plain)[:limit]) + "…"
}
