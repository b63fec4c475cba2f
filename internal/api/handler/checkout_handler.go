package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

type CheckoutHandler struct {
	checkout ports.CheckoutService
}

func NewCheckoutHandler(checkout ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// PlaceOrder submits the current cart.
//
// @Summary      Place order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  true  "Shipping address"
// @Success      201   {object}  domain.Order
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /checkout [post]
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	order, err := h.checkout.PlaceOrder(c.Request().Context(), req.ShippingAddress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Orders lists the signed-in user's orders.
//
// @Summary      Order history
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  orderListResponse
// @Failure      401  {object}  map[string]string
// @Router       /orders [get]
func (h *CheckoutHandler) Orders(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}
	orders, err := h.checkout.Orders(c.Request().Context())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: orders})
}
