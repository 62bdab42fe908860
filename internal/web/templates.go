package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/erazemk/sweetshop/internal/client"
	"github.com/erazemk/sweetshop/internal/model"
	webembed "github.com/erazemk/sweetshop/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"price": func(p float64) string {
			return "₹" + strconv.FormatFloat(p, 'f', -1, 64)
		},
		"capitalize": func(s string) string {
			words := strings.Fields(s)
			for i, w := range words {
				r, size := utf8.DecodeRuneInString(w)
				if r != utf8.RuneError {
					words[i] = string(unicode.ToUpper(r)) + w[size:]
				}
			}
			return strings.Join(words, " ")
		},
		// Only data: URIs produced by the image upload and http(s) URLs are
		// rendered as images.
		"imageSrc": func(src string) template.URL {
			if strings.HasPrefix(src, "data:image/") ||
				strings.HasPrefix(src, "https://") ||
				strings.HasPrefix(src, "http://") {
				return template.URL(src)
			}
			return ""
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs, err := webembed.Templates()
	if err != nil {
		return nil, err
	}

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"register.html",
		"dashboard.html",
		"admin.html",
		"loading.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *model.Identity
	Error   string
	Success string
	Year    int
}

func newPageData(title string, user *model.Identity) PageData {
	return PageData{Title: title, User: user, Year: time.Now().Year()}
}

// Server holds all dependencies for page handlers.
type Server struct {
	API           *client.Client
	Templates     *Templates
	SecureCookies bool
}
