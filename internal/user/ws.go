package user

import (
	"net/http"

	"Lumi_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

// WebSocketHandler keeps a socket open so the caller's other tabs and
// devices hear about favorites and progress changes.
func (h *Handler) WebSocketHandler(c echo.Context) error {
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	h.hub.Register(userID, ws)
	defer h.hub.Unregister(userID, ws)

	// Clients do not send anything; reading detects the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}
