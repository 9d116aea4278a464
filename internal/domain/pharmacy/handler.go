package pharmacy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
	"github.com/bptrack/bptrack/internal/platform/places"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/pharmacy-locator", h.Nearby)
	api.POST("/pharmacy-locator", h.Details)
}

func (h *Handler) Nearby(c echo.Context) error {
	rawLat, rawLng := c.QueryParam("latitude"), c.QueryParam("longitude")
	if rawLat == "" || rawLng == "" {
		return envelope.BadRequest("Latitude and longitude required")
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lng, errLng := strconv.ParseFloat(rawLng, 64)
	if errLat != nil || errLng != nil {
		return envelope.BadRequest("latitude and longitude must be numbers")
	}
	radius := DefaultRadiusMeters
	if raw := c.QueryParam("radius"); raw != "" {
		var err error
		if radius, err = strconv.Atoi(raw); err != nil {
			return envelope.BadRequest("radius must be an integer")
		}
	}

	res, err := h.svc.Nearby(c.Request().Context(), lat, lng, radius)
	if err != nil {
		return lookupError(err, "Failed to find pharmacies")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{
		"pharmacies":      res.Pharmacies,
		"search_location": res.SearchLocation,
		"total_found":     res.TotalFound,
	})
}

func (h *Handler) Details(c echo.Context) error {
	var req DetailsRequest
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	if req.PlaceID == "" {
		return envelope.BadRequest("place_id required")
	}
	d, err := h.svc.Details(c.Request().Context(), req.PlaceID)
	if err != nil {
		return lookupError(err, "Failed to get pharmacy details")
	}
	return envelope.OK(c, http.StatusOK, envelope.Map{"pharmacy": d})
}

func lookupError(err error, fallback string) error {
	if errors.Is(err, places.ErrNotConfigured) {
		return envelope.Unavailable("Pharmacy search is not available", err)
	}
	return envelope.FromService(err, fallback)
}
