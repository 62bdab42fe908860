package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sweetshop/internal/model"
)

// Dashboard handles GET /dashboard.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := GetProvider(r.Context()).Snapshot()
	data := &struct {
		PageData
		Sweets []model.Item
	}{
		PageData: newPageData("Dashboard", sess.User),
		Sweets:   []model.Item{},
	}

	sweets, err := s.inventory(r.Context()).List(r.Context())
	if err != nil {
		slog.Error("failed to list sweets", "error", err)
		data.Error = "Failed to fetch sweets"
	} else {
		data.Sweets = sweets
	}

	s.Templates.Render(w, "dashboard.html", data)
}
