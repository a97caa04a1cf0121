package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// StaticHandler serves the small set of static pages the API ships with: the
// index and the 404 page. Dir points at the static/ directory.
type StaticHandler struct {
	Dir string
}

func NewStaticHandler(dir string) *StaticHandler { return &StaticHandler{Dir: dir} }

// Index serves the landing page at /, /index and /index.html.
func (h *StaticHandler) Index(c echo.Context) error {
	body, err := os.ReadFile(filepath.Join(h.Dir, "html", "index.html"))
	if err != nil {
		return c.HTML(http.StatusNotFound, "<h1>Index file not found</h1>")
	}
	return c.HTMLBlob(http.StatusOK, body)
}

// NotFound is the catch-all for unmatched routes.
func (h *StaticHandler) NotFound(c echo.Context) error {
	body, err := os.ReadFile(filepath.Join(h.Dir, "html", "404.html"))
	if err != nil {
		return c.HTML(http.StatusNotFound, "<h1>404 Not Found</h1>")
	}
	return c.HTMLBlob(http.StatusNotFound, body)
}
