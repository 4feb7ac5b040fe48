package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"delivery-service/internal/domain"
	"delivery-service/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	orders    *services.OrderService
	query     *services.OrderQuery
	catalog   *services.CatalogService
	customers *services.CustomerService
}

func NewHandler(orders *services.OrderService, query *services.OrderQuery, catalog *services.CatalogService, customers *services.CustomerService) *Handler {
	return &Handler{orders: orders, query: query, catalog: catalog, customers: customers}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/products", h.ListProducts)
	r.POST("/products", h.AddProducts)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/customers", h.ListCustomers)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) AddProducts(c *gin.Context) {
	var req []ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: expected a list of {name, price}"})
		return
	}

	in := make([]services.ProductInput, 0, len(req))
	for i, p := range req {
		if p.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("products[%d].price is required", i)})
			return
		}
		in = append(in, services.ProductInput{Name: p.Name, Price: *p.Price})
	}

	n, err := h.catalog.AddProducts(c.Request.Context(), in)
	if err != nil {
		if n > 0 {
			log.Printf("add products: %d of %d saved before failure", n, len(in))
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AddProductsResponse{Message: "products added", Count: n})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateOrderResponse{Message: "order created", Order: order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.query.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.query.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// respondError maps the domain error taxonomy onto status codes. Anything else is a
// storage or unexpected failure: logged, reported generically.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
