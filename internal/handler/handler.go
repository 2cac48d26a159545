package handler

import (
	"storefront/backend/internal/cart"
	"storefront/backend/internal/hub"
	"storefront/backend/internal/listing"
	"storefront/backend/internal/media"
)

// Handler serves the storefront API.
type Handler struct {
	listings *listing.Service
	media    *media.Manager
	carts    *cart.Sessions
	hub      *hub.Hub
}

// New wires a Handler. The hub feeds the listing event stream.
func New(listings *listing.Service, mm *media.Manager, carts *cart.Sessions, h *hub.Hub) *Handler {
	return &Handler{listings: listings, media: mm, carts: carts, hub: h}
}
