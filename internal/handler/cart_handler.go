package handler

import (
	"net/http"

	"storefront/backend/internal/cart"

	"github.com/gin-gonic/gin"
)

const cartCookie = "cart_session"

// region --- DTOs ---

type CartItemInput struct {
	ListingID uint `json:"listing_id" binding:"required"`
}

type CartResponse struct {
	Items    []cart.Item `json:"items"`
	Count    int         `json:"count"`
	Subtotal float64     `json:"subtotal"`
	Tax      float64     `json:"tax"`
	Total    float64     `json:"total"`
}

func newCartResponse(s cart.State) CartResponse {
	t := s.Totals()
	return CartResponse{
		Items:    s.Items(),
		Count:    s.Count(),
		Subtotal: t.Subtotal,
		Tax:      t.Tax,
		Total:    t.Total,
	}
}

// endregion

// cartSession returns the caller's cart session id, issuing a cookie for new visitors.
func cartSession(c *gin.Context) string {
	if id, err := c.Cookie(cartCookie); err == nil && id != "" {
		return id
	}
	id := cart.NewID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id, 0, "/", "", false, true)
	return id
}

// GetCart godoc
// @Summary      Show the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} CartResponse
// @Router       /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartResponse(h.carts.Snapshot(cartSession(c))))
}

// AddCartItem godoc
// @Summary      Add a game to the cart
// @Description  Adding a game already in the cart leaves it unchanged.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        input body CartItemInput true "Game to add"
// @Success      200 {object} CartResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /cart/items [post]
func (h *Handler) AddCartItem(c *gin.Context) {
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.listings.Get(c.Request.Context(), input.ListingID)
	if err != nil {
		respondError(c, err, "Failed to fetch game")
		return
	}
	s := h.carts.Dispatch(cartSession(c), cart.Add(cart.ItemFromListing(l)))
	c.JSON(http.StatusOK, newCartResponse(s))
}

// RemoveCartItem godoc
// @Summary      Remove a game from the cart
// @Tags         cart
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} CartResponse
// @Failure      400 {object} ErrorResponse "Invalid ID"
// @Router       /cart/items/{id} [delete]
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s := h.carts.Dispatch(cartSession(c), cart.Remove(id))
	c.JSON(http.StatusOK, newCartResponse(s))
}

// ClearCart godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} CartResponse
// @Router       /cart [delete]
func (h *Handler) ClearCart(c *gin.Context) {
	s := h.carts.Dispatch(cartSession(c), cart.Clear())
	c.JSON(http.StatusOK, newCartResponse(s))
}

// Checkout godoc
// @Summary      Check out
// @Description  Payment is not implemented.
// @Tags         cart
// @Produce      json
// @Failure      501 {object} ErrorResponse
// @Router       /cart/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "Checkout is not available yet"})
}
