package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/sweetshop/internal/client"
	"github.com/erazemk/sweetshop/internal/session"
)

type webContextKey string

const (
	webProviderKey webContextKey = "provider"
	webStorageKey  webContextKey = "storage"
)

// tokenMaxAge matches the lifetime of tokens issued by the API.
const tokenMaxAge = 24 * time.Hour

// CookieStorage keeps the bearer token in the "token" cookie. It is bound to
// one request/response pair; a Write or Clear is visible to later Reads in
// the same request even though the browser only sees it on the next one.
type CookieStorage struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool

	mu      sync.Mutex
	touched bool
	token   string
}

// NewCookieStorage binds a storage to w and r.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{w: w, r: r, secure: secure}
}

func (c *CookieStorage) Read() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.touched {
		return c.token, c.token != ""
	}
	cookie, err := c.r.Cookie(session.StorageKey)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStorage) Write(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	http.SetCookie(c.w, &http.Cookie{
		Name:     session.StorageKey,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(tokenMaxAge.Seconds()),
	})
	c.touched, c.token = true, token
	return nil
}

func (c *CookieStorage) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clearAuthCookie(c.w, c.secure)
	c.touched, c.token = true, ""
	return nil
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.StorageKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// withSession hydrates a session provider from the request's cookie and
// adds it to the context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storage := NewCookieStorage(w, r, s.SecureCookies)
		logger := slog.Default().With("request_id", client.RequestID(r.Context()))
		provider := session.NewProvider(storage, s.API, session.WithLogger(logger))

		unsubscribe := provider.Subscribe(func(sess session.Session) {
			if sess.User != nil {
				logger.Info("signed in", "user", sess.User.Email, "role", sess.User.Role)
			} else {
				logger.Info("signed out")
			}
		})
		defer unsubscribe()

		ctx := context.WithValue(r.Context(), webProviderKey, provider)
		ctx = context.WithValue(ctx, webStorageKey, storage)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession lets authenticated sessions through, redirects anonymous
// ones to the login page and shows a placeholder while hydrating.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return s.withSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.follow(w, r, session.Evaluate(GetProvider(r.Context()).Snapshot()), next)
	}))
}

// RequireAdmin is RequireSession plus the admin role check. Non-admins are
// sent to the dashboard before the handler runs.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.withSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.follow(w, r, session.EvaluateAdmin(GetProvider(r.Context()).Snapshot()), next)
	}))
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request, d session.Decision, next http.Handler) {
	switch d.Action {
	case session.Wait:
		s.Templates.Render(w, "loading.html", &PageData{Title: "Loading"})
	case session.Redirect:
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	default:
		next.ServeHTTP(w, r)
	}
}

// GetProvider retrieves the request's session provider.
func GetProvider(ctx context.Context) *session.Provider {
	p, _ := ctx.Value(webProviderKey).(*session.Provider)
	return p
}

// inventory returns an inventory client reading the token from the
// request's cookie storage.
func (s *Server) inventory(ctx context.Context) *client.Inventory {
	storage, _ := ctx.Value(webStorageKey).(*CookieStorage)
	return client.NewInventory(s.API, storage)
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware assigns a request id (reusing the caller's X-Request-Id
// if present), forwards it on outbound API calls and logs the request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(client.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(client.RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(client.WithRequestID(r.Context(), id)))

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", id,
		)
	})
}
