package activity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
	"github.com/bptrack/bptrack/pkg/calendar"
)

const defaultDays = 30

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/activity-tracking", h.LogActivity)
	api.GET("/activity-tracking", h.GetHistory)
	api.PUT("/activity-tracking", h.UpdateStepGoal)
}

func (h *Handler) LogActivity(c echo.Context) error {
	var req LogRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil || req.StepsCount == nil {
		return envelope.BadRequest("user_id and steps_count required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	p, err := h.svc.LogActivity(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to log activity")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"activity_log":          p.Log,
		"goal_achieved":         p.GoalAchieved,
		"step_goal":             p.StepGoal,
		"completion_percentage": p.CompletionPercentage,
	})
}

func (h *Handler) GetHistory(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var hist *History
	if rawFrom, rawTo := c.QueryParam("date_from"), c.QueryParam("date_to"); rawFrom != "" && rawTo != "" {
		from, err := calendar.Parse(rawFrom)
		if err != nil {
			return envelope.BadRequest("date_from must be YYYY-MM-DD")
		}
		to, err := calendar.Parse(rawTo)
		if err != nil {
			return envelope.BadRequest("date_to must be YYYY-MM-DD")
		}
		hist, err = h.svc.Range(ctx, userID, from, to)
		if err != nil {
			return envelope.FromService(err, "Failed to get activity logs")
		}
	} else {
		days := defaultDays
		if raw := c.QueryParam("days"); raw != "" {
			if days, err = strconv.Atoi(raw); err != nil {
				return envelope.BadRequest("days must be an integer")
			}
		}
		hist, err = h.svc.LastDays(ctx, userID, days)
		if err != nil {
			return envelope.FromService(err, "Failed to get activity logs")
		}
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"activity_logs": hist.Days, "statistics": hist.Statistics})
}

func (h *Handler) UpdateStepGoal(c echo.Context) error {
	var req GoalRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID == nil || req.StepGoal == nil {
		return envelope.BadRequest("user_id and step_goal required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	if err := h.svc.SetStepGoal(c.Request().Context(), userID, *req.StepGoal); err != nil {
		return envelope.FromService(err, "Failed to update step goal")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"step_goal": *req.StepGoal,
		"message":   "Step goal updated successfully",
	})
}
