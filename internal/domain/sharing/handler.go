package sharing

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
	api.POST("/doctor-sharing", h.Grant)
	api.GET("/doctor-sharing", h.Get)
	api.DELETE("/doctor-sharing", h.Revoke)
}

func (h *Handler) Grant(c echo.Context) error {
	var req GrantRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil || req.DoctorEmail == "" || req.DoctorName == "" {
		return envelope.BadRequest("user_id, doctor_email, and doctor_name required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	g, err := h.svc.Grant(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to grant doctor access")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"doctor_access": g.Access,
		"access_url":    g.AccessURL,
		"message":       "Doctor access granted successfully",
	})
}

// Get lists the user's grants, or serves the doctor view when a share
// token is present. The doctor view bypasses bearer auth, so the share
// token is its only credential.
func (h *Handler) Get(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		userID, err := params.QueryUserID(c)
		if err != nil {
			return err
		}
		items, err := h.svc.ListGrants(c.Request().Context(), userID)
		if err != nil {
			return envelope.FromService(err, "Failed to get doctor access")
		}
		return envelope.OK(c, http.StatusOK, envelope.Map{"doctor_accesses": items})
	}

	userID, err := params.ParseUserID(c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	view, err := h.svc.DoctorView(c.Request().Context(), userID, token)
	if err != nil {
		return envelope.FromService(err, "Failed to get doctor access")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"patient_info":  view.PatientInfo,
		"bp_readings":   view.Readings,
		"medications":   view.Medications,
		"symptoms":      view.Symptoms,
		"doctor_access": view.DoctorAccess,
	})
}

func (h *Handler) Revoke(c echo.Context) error {
	if c.QueryParam("user_id") == "" || c.QueryParam("doctor_email") == "" {
		return envelope.BadRequest("user_id and doctor_email required")
	}
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Revoke(c.Request().Context(), userID, c.QueryParam("doctor_email")); err != nil {
		return envelope.FromService(err, "Failed to revoke doctor access")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"message": "Doctor access revoked successfully"})
}
