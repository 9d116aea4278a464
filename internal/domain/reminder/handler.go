package reminder

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
	api.POST("/medication-reminders", h.SendReminders)
	api.GET("/medication-reminders", h.ListToday)
}

func (h *Handler) SendReminders(c echo.Context) error {
	var req SendRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	res, err := h.svc.SendReminders(c.Request().Context(), userID, req.ReminderMethod, req.TestSend)
	if err != nil {
		return envelope.FromService(err, "Failed to send medication reminders")
	}
	if res.TotalMedicationsChecked == 0 {
		return envelope.OK(c, http.StatusOK, envelope.Map{"message": res.Message, "reminders_sent": 0})
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"reminders_sent":            res.RemindersSent,
		"total_medications_checked": res.TotalMedicationsChecked,
		"reminders_due":             res.RemindersDue,
		"results":                   res.Results,
		"message":                   res.Message,
	})
}

func (h *Handler) ListToday(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	sched, err := h.svc.Today(c.Request().Context(), userID)
	if err != nil {
		return envelope.FromService(err, "Failed to get reminders")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"upcoming_reminders": sched.Reminders,
		"total_for_today":    sched.TotalToday,
		"taken_count":        sched.TakenCount,
		"overdue_count":      sched.OverdueCount,
	})
}
