// Package web serves the sweet shop front end. Every page is rendered on
// the server from data fetched through the REST API with the visitor's
// bearer token, which lives in the "token" cookie.
package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/sweetshop/internal/client"
	webembed "github.com/erazemk/sweetshop/web"
)

// Options configures the router.
type Options struct {
	// SecureCookies sets the Secure attribute on the session cookie.
	SecureCookies bool
	// Gatherer is exposed on /metrics when non-nil.
	Gatherer prometheus.Gatherer
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(api *client.Client, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		API:           api,
		Templates:     templates,
		SecureCookies: opts.SecureCookies,
	}

	static, err := webembed.Static()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Static assets and probes.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// Public routes.
	mux.Handle("GET /login", s.withSession(http.HandlerFunc(s.LoginPage)))
	mux.Handle("POST /login", s.withSession(http.HandlerFunc(s.LoginSubmit)))
	mux.Handle("GET /register", s.withSession(http.HandlerFunc(s.RegisterPage)))
	mux.Handle("POST /register", s.withSession(http.HandlerFunc(s.RegisterSubmit)))
	mux.Handle("POST /logout", s.withSession(http.HandlerFunc(s.Logout)))

	// Authenticated routes.
	mux.Handle("GET /dashboard", s.RequireSession(http.HandlerFunc(s.Dashboard)))

	mux.Handle("GET /admin", s.RequireAdmin(http.HandlerFunc(s.AdminPage)))
	mux.Handle("POST /admin/sweets", s.RequireAdmin(http.HandlerFunc(s.AdminCreateSubmit)))
	mux.Handle("POST /admin/sweets/{id}", s.RequireAdmin(http.HandlerFunc(s.AdminUpdateSubmit)))
	mux.Handle("POST /admin/sweets/{id}/delete", s.RequireAdmin(http.HandlerFunc(s.AdminDeleteSubmit)))
	mux.Handle("POST /admin/sweets/{id}/restock", s.RequireAdmin(http.HandlerFunc(s.AdminRestockSubmit)))

	// Everything else, "/" included, lands on the dashboard, which is guarded.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	return mux, nil
}
