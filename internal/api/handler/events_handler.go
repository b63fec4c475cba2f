package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/ports"
)

const (
	eventBuffer    = 16
	eventKeepAlive = 25 * time.Second
)

// EventsHandler streams state-change notifications as server-sent events.
type EventsHandler struct {
	events    ports.EventSubscriber
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewEventsHandler(events ports.EventSubscriber, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{events: events, keepAlive: eventKeepAlive, log: log}
}

// Stream holds the connection open and writes one SSE frame per event. It
// returns when the client disconnects or the bus closes.
//
// @Summary      State-change stream
// @Tags         events
// @Produce      text/event-stream
// @Success      200
// @Router       /events [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	ch, cancel := h.events.Subscribe(eventBuffer)
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Topic, data); err != nil {
				h.log.Debug().Err(err).Msg("event stream write failed")
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keepalive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
