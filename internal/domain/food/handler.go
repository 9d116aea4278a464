package food

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
	"github.com/bptrack/bptrack/pkg/pagination"
)

const defaultLimit = 50

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/food-analysis", h.AnalyzeFood)
	api.GET("/food-analysis", h.ListFoodLogs)
}

func (h *Handler) AnalyzeFood(c echo.Context) error {
	var req AnalyzeRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ImageBase64) == "" || req.UserID == nil {
		return envelope.BadRequest("Image and user_id required")
	}
	userID, err := params.BodyUserID(c, req.UserID)
	if err != nil {
		return err
	}
	l, analysis, err := h.svc.AnalyzeAndLog(c.Request().Context(), userID, req)
	if err != nil {
		return envelope.FromService(err, "Failed to analyze food")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"food_log": l, "analysis": analysis})
}

func (h *Handler) ListFoodLogs(c echo.Context) error {
	userID, err := params.QueryUserID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c, defaultLimit)
	ctx := c.Request().Context()
	items, err := h.svc.ListFoodLogs(ctx, userID, pg.Limit)
	if err != nil {
		return envelope.FromService(err, "Failed to get food logs")
	}
	sodium, err := h.svc.TodaySodium(ctx, userID)
	if err != nil {
		return envelope.FromService(err, "Failed to get food logs")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"food_logs": items, "today_sodium_mg": sodium})
}
