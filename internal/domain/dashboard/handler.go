package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Get)
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	sum, err := h.svc.Summary(c.Request().Context(), userID)
	if err != nil {
		return envelope.FromService(err, "Failed to load dashboard")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"dashboard": sum})
}
