// Package api is a development implementation of the sweet shop REST API.
// It exists so the front ends can run and be tested locally; the
// production API is a separate service.
package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/sweetshop/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	sweetsHandler := &SweetsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)

	// Sweets: read (all roles), write (admin).
	mux.Handle("GET /api/sweets", authMW(http.HandlerFunc(sweetsHandler.List)))
	mux.Handle("POST /api/sweets", authMW(requireAdmin(http.HandlerFunc(sweetsHandler.Create))))
	mux.Handle("PUT /api/sweets/{id}", authMW(requireAdmin(http.HandlerFunc(sweetsHandler.Update))))
	mux.Handle("DELETE /api/sweets/{id}", authMW(requireAdmin(http.HandlerFunc(sweetsHandler.Delete))))
	mux.Handle("POST /api/sweets/{id}/restock", authMW(requireAdmin(http.HandlerFunc(sweetsHandler.Restock))))

	return mux
}
