/*
Package user implements the authenticated HTTP endpoints: skin analysis,
favorites, progress history and the change-notification socket.
*/
package user

import (
	"context"
	"net/http"

	"Lumi_V0.1/internal/aiservice"
	"Lumi_V0.1/internal/appstate"
	"Lumi_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Analyzer runs the two-stage analysis action.
type Analyzer interface {
	AnalyzeSkinAndRecommendProducts(ctx context.Context, photoDataURI string) aiservice.ActionResult
}

// StateRegistry resolves the hydrated state store of a user.
type StateRegistry interface {
	Get(ctx context.Context, userID string) (*appstate.Store, error)
}

// Handler holds the dependencies shared by every user endpoint.
type Handler struct {
	analyzer       Analyzer
	states         StateRegistry
	hub            *utility.Hub
	maxUploadBytes int64
}

func NewHandler(analyzer Analyzer, states StateRegistry, hub *utility.Hub, maxUploadBytes int64) *Handler {
	return &Handler{
		analyzer:       analyzer,
		states:         states,
		hub:            hub,
		maxUploadBytes: maxUploadBytes,
	}
}

// userStore loads the caller's store, writing the error response itself
// when it returns nil.
func (h *Handler) userStore(c echo.Context) (*appstate.Store, error) {
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	store, err := h.states.Get(c.Request().Context(), userID)
	if err != nil {
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("Failed to load user state")
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load user data"})
	}
	return store, nil
}
