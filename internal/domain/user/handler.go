package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/auth"
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
	api.POST("/users", h.CreateUser)
	api.GET("/users/:id", h.GetUser)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var u User
	if err := params.Bind(c, &u); err != nil {
		return err
	}
	u.ID = 0
	if err := h.svc.CreateUser(c.Request().Context(), &u); err != nil {
		return envelope.FromService(err, "Failed to create user")
	}
	return envelope.OK(c, http.StatusCreated, envelope.Map{"user": u})
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := params.PathID(c, "id")
	if err != nil {
		return err
	}
	if err := auth.CheckUser(c.Request().Context(), id); err != nil {
		return err
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return envelope.FromService(err, "Failed to fetch user")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"user": u})
}
