package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/params"
)

// StreamPath is excluded from the request timeout.
const StreamPath = "/api/chat"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.Chat)
}

func replyError(err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return envelope.Unavailable("Chat assistant is not available", err)
	}
	return envelope.FromService(err, "Failed to get a response from the assistant")
}

func (h *Handler) Chat(c echo.Context) error {
	var req Request
	if err := params.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if !req.Stream {
		msg, err := h.svc.Reply(ctx, req.Messages)
		if err != nil {
			return replyError(err)
		}
		return envelope.OK(c, http.StatusOK, envelope.Map{"message": msg})
	}

	stream, err := h.svc.Stream(ctx, req.Messages)
	if err != nil {
		return replyError(err)
	}
	defer stream.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Headers are already sent; report in-band and end the stream.
			h.svc.logger.Error().Err(err).Str("request_id", res.Header().Get(echo.HeaderXRequestID)).Msg("chat stream failed")
			writeEvent(res, map[string]string{"error": "The assistant stopped responding"})
			break
		}
		if err := writeEvent(res, map[string]string{"content": delta}); err != nil {
			return nil
		}
	}
	fmt.Fprint(res, "data: [DONE]\n\n")
	res.Flush()
	return nil
}

func writeEvent(res *echo.Response, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
