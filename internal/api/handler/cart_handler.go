package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/ports"
)

// CartHandler exposes the cart coordinator. Products are resolved through the
// catalog so lines carry the price the buyer saw.
type CartHandler struct {
	cart    ports.CartCoordinator
	catalog ports.CatalogRepository
}

func NewCartHandler(cart ports.CartCoordinator, catalog ports.CatalogRepository) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog}
}

// Get returns the cart with derived totals.
//
// @Summary      Current cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Failure      502  {object}  map[string]string
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	cart, err := h.cart.Cart(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(h.cart.Mode(), cart))
}

// AddItem adds a catalog product to the cart. A quantity below one adds one.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      200   {object}  cartResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := h.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if err := h.cart.AddToCart(ctx, *product, req.Quantity); err != nil {
		return err
	}
	return h.Get(c)
}

// UpdateItem sets a line's quantity. Zero or less removes the line.
//
// @Summary      Change quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Cart item id"
// @Param        body  body      updateItemRequest  true  "New quantity"
// @Success      200   {object}  cartResponse
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.cart.UpdateQuantity(c.Request().Context(), c.Param("id"), req.Quantity); err != nil {
		return err
	}
	return h.Get(c)
}

// RemoveItem drops a line. Unknown ids are ignored.
//
// @Summary      Remove from cart
// @Tags         cart
// @Produce      json
// @Param        id   path      string  true  "Cart item id"
// @Success      200  {object}  cartResponse
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	if err := h.cart.RemoveFromCart(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return h.Get(c)
}

// Clear empties the cart.
//
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.cart.ClearCart(c.Request().Context()); err != nil {
		return err
	}
	return h.Get(c)
}
