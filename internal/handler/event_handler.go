package handler

import (
	"net/http"

	"storefront/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// clientBuffer is how many events a slow subscriber may lag behind before it misses some.
const clientBuffer = 16

// ListingEvents godoc
// @Summary      Stream listing changes
// @Description  Server-sent events carrying {"type":"listing.created|listing.updated|listing.deleted","payload":{"id":1}}.
// @Tags         listings
// @Produce      text/event-stream
// @Success      200 {string} string "event stream"
// @Router       /listings/events [get]
func (h *Handler) ListingEvents(c *gin.Context) {
	client := make(hub.Client, clientBuffer)
	h.hub.Subscribe(hub.TopicListings, client)
	defer h.hub.Unsubscribe(hub.TopicListings, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client:
			if !ok {
				return
			}
			c.SSEvent("listing", string(msg))
			c.Writer.Flush()
		}
	}
}
