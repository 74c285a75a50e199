package handler

import (
	"github.com/gin-gonic/gin"

	"khata/internal/port"
	"khata/internal/service"
)

// ProductHandler handles catalogue endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /api/v1/products
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param body body service.CreateProductInput true "Product"
// @Success 201 {object} Response{data=domain.Product}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Item code already exists"
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, product)
}

// List handles GET /api/v1/products
// @Summary List products
// @Tags products
// @Produce json
// @Param search query string false "Matches name, item code or HSN code"
// @Param low_stock query bool false "Only products at or below their minimum stock"
// @Param sort query string false "Sort key, prefix with - for descending"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Product,meta=PagMeta}
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	filter := port.ProductFilter{
		ListParams:   port.ListParams{Offset: offset, Limit: limit, Sort: c.Query("sort")},
		Search:       c.Query("search"),
		LowStockOnly: c.Query("low_stock") == "true",
	}
	products, total, err := h.productService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), companyID, productID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}

// GetByCode handles GET /api/v1/products/by-code/:code
// @Summary Look up a product by item code
// @Description Used by barcode scanners at the billing counter
// @Tags products
// @Produce json
// @Param code path string true "Item code"
// @Success 200 {object} Response{data=domain.Product}
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Security BearerAuth
// @Router /products/by-code/{code} [get]
func (h *ProductHandler) GetByCode(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByItemCode(c.Request.Context(), companyID, c.Param("code"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}

// Update handles PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), companyID, productID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}

// Delete handles DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), companyID, productID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "product deleted"})
}
