package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input service.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) GetAll(c *gin.Context) {
	page, limit := pageQuery(c)

	orders, total, err := h.orders.GetAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"orders": orders, "total": total})
}
