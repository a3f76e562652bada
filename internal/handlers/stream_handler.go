package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lediangroup/repair-board/internal/models"
	"github.com/valyala/fasthttp"
)

// Subscriber is the live-query surface of the report store.
type Subscriber interface {
	Subscribe() (<-chan []models.Report, func())
}

// StreamHandler serves the report list as a Server-Sent-Events stream of
// full snapshots: the current list on connect, then a refreshed list
// after every store mutation.
type StreamHandler struct {
	src Subscriber
}

func NewStreamHandler(src Subscriber) *StreamHandler {
	return &StreamHandler{src: src}
}

func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ch, cancel := h.src.Subscribe()
		defer cancel()

		// Heartbeats double as disconnect detection: a dead client fails
		// the flush and ends the stream.
		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case reports, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(reports)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
