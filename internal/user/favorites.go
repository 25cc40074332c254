package user

import (
	"net/http"
	"net/url"

	"Lumi_V0.1/internal/models"
	"github.com/labstack/echo/v4"
)

type FavoritesResponse struct {
	Favorites []models.Product `json:"favorites"`
}

type FavoriteChangeResponse struct {
	Changed   bool             `json:"changed"`
	Favorites []models.Product `json:"favorites"`
}

type FavoriteStatusResponse struct {
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

func (h *Handler) ListFavoritesHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}
	return c.JSON(http.StatusOK, FavoritesResponse{Favorites: store.Favorites()})
}

// AddFavoriteHandler saves a product. A product whose name is already
// saved is left untouched and reported with changed=false.
func (h *Handler) AddFavoriteHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	var req models.Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Product name is required"})
	}

	added := store.AddFavorite(c.Request().Context(), req)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return c.JSON(status, FavoriteChangeResponse{Changed: added, Favorites: store.Favorites()})
}

func (h *Handler) RemoveFavoriteHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	removed := store.RemoveFavorite(c.Request().Context(), favoriteName(c))
	return c.JSON(http.StatusOK, FavoriteChangeResponse{Changed: removed, Favorites: store.Favorites()})
}

func (h *Handler) IsFavoriteHandler(c echo.Context) error {
	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	name := favoriteName(c)
	return c.JSON(http.StatusOK, FavoriteStatusResponse{Name: name, Favorite: store.IsFavorite(name)})
}

// favoriteName reads the :name path parameter. echo routes on RawPath when
// the request has one and then leaves the parameter escaped.
func favoriteName(c echo.Context) string {
	name := c.Param("name")
	if c.Request().URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
