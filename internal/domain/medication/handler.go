package medication

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
	api.POST("/medications", h.CreateMedication)
	api.GET("/medications", h.ListMedications)
	api.GET("/medications/adherence", h.GetAdherence)
	api.PATCH("/medications/:id", h.UpdateMedication)
	api.POST("/medications/:id/logs", h.LogDose)
}

func (h *Handler) CreateMedication(c echo.Context) error {
	var req CreateRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil {
		return envelope.BadRequest("User ID and medication name are required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	m, err := h.svc.CreateMedication(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to create medication")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"medication": m})
}

func (h *Handler) ListMedications(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	activeOnly := c.QueryParam("active_only") == "true"
	items, err := h.svc.ListMedications(c.Request().Context(), userID, activeOnly)
	if err != nil {
		return envelope.FromService(err, "Failed to fetch medications")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"medications": items})
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	id, err := params.PathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	if req.Active == nil {
		return envelope.BadRequest("active is required")
	}
	m, err := h.svc.SetActive(c.Request().Context(), userID, id, *req.Active)
	if err != nil {
		return envelope.FromService(err, "Failed to update medication")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"medication": m})
}

func (h *Handler) LogDose(c echo.Context) error {
	id, err := params.PathID(c, "id")
	if err != nil {
		return err
	}
	var req LogRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	l, err := h.svc.LogDose(c.Request().Context(), userID, id, req)
	if err != nil {
		return envelope.FromService(err, "Failed to log dose")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"medication_log": l})
}

func (h *Handler) GetAdherence(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Adherence(c.Request().Context(), userID)
	if err != nil {
		return envelope.FromService(err, "Failed to compute adherence")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"adherence": a})
}
