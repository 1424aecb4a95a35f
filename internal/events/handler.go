package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// GET /api/events?collections=companies,payments
// Server-sent event stream of change notifications. Without the
// collections filter every watched collection is streamed.
func StreamHandler(hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collections := AllCollections()
		if raw := c.Query("collections"); raw != "" {
			collections = collections[:0]
			for _, name := range strings.Split(raw, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				if !ValidCollection(name) {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown collection: "+name)
				}
				collections = append(collections, name)
			}
			if len(collections) == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "No collections requested")
			}
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			merged := make(chan Event, 32)
			done := make(chan struct{})

			subs := make([]*Subscription, 0, len(collections))
			for _, col := range collections {
				sub := hub.Subscribe(col)
				subs = append(subs, sub)
				go func(s *Subscription) {
					for ev := range s.C {
						select {
						case merged <- ev:
						case <-done:
							return
						}
					}
				}(sub)
			}
			defer func() {
				close(done)
				for _, s := range subs {
					hub.Unsubscribe(s)
				}
			}()

			// Heartbeats double as disconnect detection: the write
			// fails once the client is gone.
			heartbeat := time.NewTicker(15 * time.Second)
			defer heartbeat.Stop()

			for {
				select {
				case ev := <-merged:
					body, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", body); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-heartbeat.C:
					if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))

		return nil
	}
}
