package user

import (
	"net/http"

	"Lumi_V0.1/internal/models"
	"Lumi_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

type ProgressResponse struct {
	Entries []models.ProgressEntry `json:"entries"`
}

// ListProgressHandler returns the history, newest first.
func (h *Handler) ListProgressHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}
	return c.JSON(http.StatusOK, ProgressResponse{Entries: store.Progress()})
}

func (h *Handler) AddProgressHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	var req models.NewProgressEntry
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "photoDataUri is required"})
	}
	if _, err := utility.ParseDataURI(req.PhotoDataURI); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": MsgInvalidPhoto})
	}

	entry := store.AddProgressEntry(c.Request().Context(), req)
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) GetProgressEntryHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	entry, ok := store.ProgressEntry(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Progress entry not found"})
	}
	return c.JSON(http.StatusOK, entry)
}
