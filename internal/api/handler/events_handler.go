package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/infrastructure/notify"
)

// EventsHandler streams the realtime channel over Server-Sent Events.
type EventsHandler struct {
	hub *notify.Hub
	log zerolog.Logger
}

func NewEventsHandler(hub *notify.Hub, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, log: log}
}

// Stream handles GET /api/events. There is no replay: the stream starts
// with events broadcast after the subscription, and clients reconcile
// any gap by re-fetching state.
//
// @Summary      Live event stream
// @Tags         events
// @Produce      text/event-stream
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]any
// @Router       /api/events [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				h.log.Warn().Err(err).Str("event", ev.Name).Msg("unmarshalable event payload")
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
