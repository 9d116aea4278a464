package symptom

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
	"github.com/bptrack/bptrack/pkg/pagination"
)

const defaultLimit = 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/symptoms", h.LogSymptom)
	api.GET("/symptoms", h.ListSymptoms)
}

func (h *Handler) LogSymptom(c echo.Context) error {
	var req CreateRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil || req.SymptomType == "" || req.Severity == nil {
		return envelope.BadRequest("User ID, symptom type, and severity are required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	sl, err := h.svc.LogSymptom(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to create symptom log")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"symptom": sl})
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c, defaultLimit)
	items, err := h.svc.ListSymptoms(c.Request().Context(), userID, pg.Limit)
	if err != nil {
		return envelope.FromService(err, "Failed to fetch symptom logs")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"symptoms": items})
}
