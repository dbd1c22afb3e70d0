package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	orders *services.Orders
}

func NewOrderController(orders *services.Orders) *OrderController {
	return &OrderController{orders: orders}
}

// Index  GET /api/orders
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.ListOrders(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// Show  GET /api/orders/{id}
func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// ShowByNumber  GET /api/orders/number/{number}
func (oc *OrderController) ShowByNumber(c *ctx.Context) {
	order, err := oc.orders.GetOrderByNumber(c.Context(), c.Param("number"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Store  POST /api/orders
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.DecodeJSON(&in) {
		return
	}
	ref, err := oc.orders.CreateOrder(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(ref)
}

// UpdateStatus  PATCH /api/orders/{id}/status
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !c.DecodeJSON(&body) {
		return
	}
	status, err := oc.orders.SetStatus(c.Context(), id, body.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"id": id, "status": status})
}

// Destroy  DELETE /api/orders/{id}
func (oc *OrderController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := oc.orders.DeleteOrder(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}
