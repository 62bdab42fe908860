package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/sweetshop/internal/imaging"
	"github.com/erazemk/sweetshop/internal/model"
)

// Admin panel messages.
const (
	msgInvalidNumbers = "Price and quantity must be valid positive values"
	msgFetchFailed    = "Failed to fetch sweets"
	msgSaveFailed     = "Failed to save sweet"
	msgDeleteFailed   = "Failed to delete sweet"
	msgRestockFailed  = "Failed to restock sweet"
	msgImageTooLarge  = "Image is too large"
)

var successMessages = map[string]string{
	"created":   "Sweet added",
	"updated":   "Sweet updated",
	"deleted":   "Sweet deleted",
	"restocked": "Sweet restocked",
}

// maxFormBytes bounds an admin form including an image upload.
const maxFormBytes = imaging.MaxUploadBytes + 1<<20

// sweetForm holds the raw form values so a failed submit can be redisplayed
// exactly as typed.
type sweetForm struct {
	Name        string
	Category    string
	Price       string
	Quantity    string
	Image       string
	Description string
}

func formFromItem(it model.Item) sweetForm {
	return sweetForm{
		Name:        it.Name,
		Category:    it.Category,
		Price:       strconv.FormatFloat(it.Price, 'f', -1, 64),
		Quantity:    strconv.Itoa(it.Quantity),
		Image:       it.Image,
		Description: it.Description,
	}
}

// formError is a submit rejected before any API call.
type formError struct{ msg string }

func (e *formError) Error() string { return e.msg }

// input converts the form to an ItemInput, checking it locally.
func (f sweetForm) input() (model.ItemInput, error) {
	price, perr := strconv.ParseFloat(f.Price, 64)
	qty, qerr := strconv.Atoi(f.Quantity)
	if perr != nil || qerr != nil || !model.ValidPrice(price) || qty < 0 {
		return model.ItemInput{}, &formError{msgInvalidNumbers}
	}

	in := model.ItemInput{
		Name:        f.Name,
		Category:    f.Category,
		Price:       price,
		Quantity:    qty,
		Image:       f.Image,
		Description: f.Description,
	}

	var verr *model.ValidationError
	if err := in.Validate(); errors.As(err, &verr) {
		switch {
		case verr.Has("name"):
			return in, &formError{"Name is required"}
		case verr.Has("category"):
			return in, &formError{"Choose a valid category"}
		case verr.Has("description"):
			return in, &formError{"Description is too long"}
		default:
			return in, &formError{msgInvalidNumbers}
		}
	} else if err != nil {
		return in, err
	}
	return in, nil
}

type adminPage struct {
	PageData
	Sweets        []model.Item
	Categories    []string
	Form          sweetForm
	EditingID     string
	RestockAmount int
}

// parseSweetForm reads the admin form. An uploaded file replaces the image
// field with a downscaled JPEG data URI.
func parseSweetForm(w http.ResponseWriter, r *http.Request) (sweetForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return sweetForm{}, &formError{msgImageTooLarge}
		}
	}

	f := sweetForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Category:    r.FormValue("category"),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Quantity:    strings.TrimSpace(r.FormValue("quantity")),
		Image:       strings.TrimSpace(r.FormValue("image")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if f.Category == "" {
		f.Category = model.CategoryChocolate
	}

	if r.MultipartForm == nil {
		return f, nil
	}
	file, _, err := r.FormFile("image_file")
	if errors.Is(err, http.ErrMissingFile) {
		return f, nil
	}
	if err != nil {
		return f, &formError{"Could not read image"}
	}
	defer file.Close()

	uri, err := imaging.ToDataURI(file)
	if err != nil {
		slog.Warn("rejected image upload", "error", err)
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			return f, &formError{msgImageTooLarge}
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			return f, &formError{"Only JPEG and PNG images are accepted"}
		default:
			return f, &formError{"Could not process image"}
		}
	}
	f.Image = uri
	return f, nil
}

// renderAdmin fetches the current list and renders the panel around page.
// A non-empty editID pre-fills the form from that sweet.
func (s *Server) renderAdmin(w http.ResponseWriter, r *http.Request, page *adminPage, editID string) {
	page.User = GetProvider(r.Context()).Snapshot().User
	page.Categories = model.Categories
	page.RestockAmount = model.DefaultRestockAmount

	sweets, err := s.inventory(r.Context()).List(r.Context())
	if err != nil {
		slog.Error("failed to list sweets", "error", err)
		if page.Error == "" {
			page.Error = msgFetchFailed
		}
		sweets = []model.Item{}
	}
	page.Sweets = sweets

	for _, it := range sweets {
		if editID != "" && it.ID == editID {
			page.Form = formFromItem(it)
			page.EditingID = it.ID
			break
		}
	}
	if page.Form.Category == "" {
		page.Form.Category = model.CategoryChocolate
	}

	s.Templates.Render(w, "admin.html", page)
}

func (s *Server) adminError(w http.ResponseWriter, r *http.Request, msg string, form sweetForm, editingID string) {
	page := &adminPage{PageData: newPageData("Admin Panel", nil), Form: form, EditingID: editingID}
	page.Error = msg
	s.renderAdmin(w, r, page, "")
}

func redirectAdmin(w http.ResponseWriter, r *http.Request, done string) {
	http.Redirect(w, r, "/admin?done="+url.QueryEscape(done), http.StatusSeeOther)
}

// AdminPage handles GET /admin. ?edit=<id> pre-fills the form with that sweet.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	page := &adminPage{PageData: newPageData("Admin Panel", nil)}
	page.Success = successMessages[r.URL.Query().Get("done")]
	s.renderAdmin(w, r, page, r.URL.Query().Get("edit"))
}

// AdminCreateSubmit handles POST /admin/sweets.
func (s *Server) AdminCreateSubmit(w http.ResponseWriter, r *http.Request) {
	s.saveSweet(w, r, "")
}

// AdminUpdateSubmit handles POST /admin/sweets/{id}.
func (s *Server) AdminUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	s.saveSweet(w, r, r.PathValue("id"))
}

func (s *Server) saveSweet(w http.ResponseWriter, r *http.Request, id string) {
	form, err := parseSweetForm(w, r)
	if err != nil {
		s.adminError(w, r, err.Error(), form, id)
		return
	}

	in, err := form.input()
	if err != nil {
		s.adminError(w, r, err.Error(), form, id)
		return
	}

	user := GetProvider(r.Context()).Snapshot().User
	inv := s.inventory(r.Context())
	if id == "" {
		err = inv.Create(r.Context(), in)
	} else {
		err = inv.Update(r.Context(), id, in)
	}
	if err != nil {
		slog.Error("failed to save sweet", "user", user.Email, "id", id, "error", err)
		s.adminError(w, r, msgSaveFailed, form, id)
		return
	}

	if id == "" {
		slog.Info("sweet created", "user", user.Email, "sweet", in.Name)
		redirectAdmin(w, r, "created")
		return
	}
	slog.Info("sweet updated", "user", user.Email, "id", id, "sweet", in.Name)
	redirectAdmin(w, r, "updated")
}

// AdminDeleteSubmit handles POST /admin/sweets/{id}/delete.
func (s *Server) AdminDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := GetProvider(r.Context()).Snapshot().User

	if err := s.inventory(r.Context()).Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete sweet", "user", user.Email, "id", id, "error", err)
		s.adminError(w, r, msgDeleteFailed, sweetForm{}, "")
		return
	}

	slog.Info("sweet deleted", "user", user.Email, "id", id)
	redirectAdmin(w, r, "deleted")
}

// AdminRestockSubmit handles POST /admin/sweets/{id}/restock. The amount
// defaults to model.DefaultRestockAmount.
func (s *Server) AdminRestockSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := GetProvider(r.Context()).Snapshot().User

	amount := model.DefaultRestockAmount
	if v := strings.TrimSpace(r.FormValue("amount")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.adminError(w, r, "Restock amount must be a positive number", sweetForm{}, "")
			return
		}
		amount = n
	}

	if err := s.inventory(r.Context()).Restock(r.Context(), id, amount); err != nil {
		slog.Error("failed to restock sweet", "user", user.Email, "id", id, "error", err)
		s.adminError(w, r, msgRestockFailed, sweetForm{}, "")
		return
	}

	slog.Info("sweet restocked", "user", user.Email, "id", id, "amount", amount)
	redirectAdmin(w, r, "restocked")
}
