package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/inventory-api/internal/api/metrics"
	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for inventory operations.
type ProductHandler struct {
	service ports.ProductService
	metrics *metrics.Metrics
}

func NewProductHandler(service ports.ProductService, m *metrics.Metrics) *ProductHandler {
	return &ProductHandler{service: service, metrics: m}
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Exact category"
// @Param        search    query     string  false  "Case-insensitive match on name or description"
// @Param        inStock   query     string  false  "true or false"
// @Param        sortBy    query     string  false  "Product field to sort by"
// @Param        order     query     string  false  "asc or desc"
// @Success      200       {object}  listProductsResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	res, err := h.service.List(c.Request().Context(), ports.ListProductsInput{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		InStock:  parseInStock(c.QueryParam("inStock")),
		SortBy:   c.QueryParam("sortBy"),
		Order:    c.QueryParam("order"),
	})
	if err != nil {
		return err
	}

	items := make([]productResponse, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, listProductsResponse{Count: res.Count, Items: items})
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productItemResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productItemResponse{Item: toProductResponse(p)})
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product fields"
// @Success      201   {object}  productItemResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	in := req.toInput()
	if err := c.Validate(&in); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, productItemResponse{
		Message: "Sweet created successfully",
		Item:    toProductResponse(p),
	})
}

// Update handles PUT /products/:id. Only the supplied fields change.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productItemResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	in := req.toInput()
	if err := c.Validate(&in); err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productItemResponse{
		Message: "Sweet updated successfully",
		Item:    toProductResponse(p),
	})
}

// Delete handles DELETE /products/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productItemResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	p, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productItemResponse{
		Message: "Sweet deleted successfully",
		Item:    toProductResponse(p),
	})
}

// Purchase handles POST /products/:id/purchase. Quantity defaults to 1.
//
// @Summary      Purchase a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true   "Product ID"
// @Param        body  body      quantityRequest  false  "Units to buy"
// @Success      200   {object}  purchaseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /products/{id}/purchase [post]
func (h *ProductHandler) Purchase(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.service.Purchase(c.Request().Context(), c.Param("id"), quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			h.metrics.ObserveInsufficientStock()
		}
		return err
	}
	h.metrics.ObservePurchase(string(p.Category), quantity)

	return c.JSON(http.StatusOK, purchaseResponse{
		Message:   "Purchase successful",
		Item:      toProductResponse(p),
		Purchased: quantity,
	})
}

// Restock handles POST /products/:id/restock. Quantity is required.
//
// @Summary      Restock a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Product ID"
// @Param        body  body      quantityRequest  true  "Units to add"
// @Success      200   {object}  restockResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /products/{id}/restock [post]
func (h *ProductHandler) Restock(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return domain.NewValidationError(domain.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}

	p, err := h.service.Restock(c.Request().Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}
	h.metrics.ObserveRestock(string(p.Category), *req.Quantity)

	return c.JSON(http.StatusOK, restockResponse{
		Message: "Restock successful",
		Item:    toProductResponse(p),
		Added:   *req.Quantity,
	})
}

// parseInStock maps "true"/"false" to a filter; anything else means no filter.
func parseInStock(v string) *bool {
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	default:
		return nil
	}
}
