package reading

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
	"github.com/bptrack/bptrack/pkg/pagination"
)

const defaultLimit = 10

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bp-readings", h.CreateReading)
	api.GET("/bp-readings", h.ListReadings)
}

func (h *Handler) CreateReading(c echo.Context) error {
	var req CreateRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil || req.Systolic == nil || req.Diastolic == nil {
		return envelope.BadRequest("Missing required fields: user_id, systolic, diastolic")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	rd, err := h.svc.CreateReading(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to save reading")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"reading": rd})
}

func (h *Handler) ListReadings(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c, defaultLimit)
	items, err := h.svc.ListReadings(c.Request().Context(), userID, pg.Limit)
	if err != nil {
		return envelope.FromService(err, "Failed to fetch readings")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"readings": items})
}
