package httpapi

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Product handlers
type createProductReq struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Code        string               `json:"code" binding:"required"`
	Price       decimal.Decimal      `json:"price"`
	Stock       int                  `json:"stock"`
	Category    string               `json:"category"`
	Status      domain.ProductStatus `json:"status"`
	Thumbnails  []string             `json:"thumbnails"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body createProductReq true "Product"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 409 {object} envelope
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := s.svc.Products.Create(c, domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Status:      req.Status,
		Thumbnails:  req.Thumbnails,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param pid path string true "Product ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /products/{pid} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, valid := parseID(c, "pid")
	if !valid {
		return
	}
	p, err := s.svc.Products.GetByID(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// поля, не переданные в запросе, сохраняют текущие значения
type updateProductReq struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Code        *string               `json:"code"`
	Price       *decimal.Decimal      `json:"price"`
	Stock       *int                  `json:"stock"`
	Category    *string               `json:"category"`
	Status      *domain.ProductStatus `json:"status"`
	Thumbnails  []string              `json:"thumbnails"`
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pid path string true "Product ID"
// @Param input body updateProductReq true "Update"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /products/{pid} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, valid := parseID(c, "pid")
	if !valid {
		return
	}
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	cur, err := s.svc.Products.GetByID(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	if req.Title != nil {
		cur.Title = *req.Title
	}
	if req.Description != nil {
		cur.Description = *req.Description
	}
	if req.Code != nil {
		cur.Code = *req.Code
	}
	if req.Price != nil {
		cur.Price = *req.Price
	}
	if req.Stock != nil {
		cur.Stock = *req.Stock
	}
	if req.Category != nil {
		cur.Category = *req.Category
	}
	if req.Status != nil {
		cur.Status = *req.Status
	}
	if req.Thumbnails != nil {
		cur.Thumbnails = req.Thumbnails
	}
	p, err := s.svc.Products.Update(c, *cur)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Security BearerAuth
// @Param pid path string true "Product ID"
// @Success 204
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /products/{pid} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, valid := parseID(c, "pid")
	if !valid {
		return
	}
	if err := s.svc.Products.Delete(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param query query string false "Title or description contains"
// @Param category query string false "Category"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Param available query bool false "Only products in stock"
// @Param sort query string false "Price order: asc|desc"
// @Param limit query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	f.Query = c.Query("query")
	if f.Query == "" {
		f.Query = c.Query("q")
	}
	f.Category = c.Query("category")
	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if v := c.Query(key); v != "" {
			x, err := decimal.NewFromString(v)
			if err != nil {
				badRequest(c, "invalid "+key)
				return
			}
			*dst = &x
		}
	}
	if v := c.Query("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "invalid available")
			return
		}
		f.AvailableOnly = b
	}
	switch v := repository.SortOrder(c.Query("sort")); v {
	case repository.SortNone, repository.SortPriceAsc, repository.SortPriceDesc:
		f.Sort = v
	default:
		badRequest(c, "invalid sort")
		return
	}
	for key, dst := range map[string]*int{"limit": &f.Limit, "page": &f.Page} {
		if v := c.Query(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				badRequest(c, "invalid "+key)
				return
			}
			*dst = n
		}
	}
	page, err := s.svc.Products.List(c, f)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// @Summary Export catalog as xlsx
// @Tags products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /products/export [get]
func (s *Server) exportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.svc.Export.WriteXLSX(c, &buf); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Cart handlers

// @Summary Create cart for the current user
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} envelope
// @Router /carts [post]
func (s *Server) createCart(c *gin.Context) {
	view, err := s.svc.Carts.Create(c, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, view)
}

// @Summary Get cart with resolved products
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 403 {object} envelope
// @Failure 404 {object} envelope
// @Router /carts/{cid} [get]
func (s *Server) getCart(c *gin.Context) {
	view, err := s.svc.Carts.View(c, c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// @Summary Add one unit of a product
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Success 200 {object} envelope
// @Failure 404 {object} envelope
// @Router /carts/{cid}/product/{pid} [post]
func (s *Server) addToCart(c *gin.Context) {
	view, err := s.svc.Carts.AddLineItem(c, c.Param("cid"), c.Param("pid"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// @Summary Remove a product from the cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Success 200 {object} envelope
// @Failure 404 {object} envelope
// @Router /carts/{cid}/product/{pid} [delete]
func (s *Server) removeFromCart(c *gin.Context) {
	view, err := s.svc.Carts.RemoveLineItem(c, c.Param("cid"), c.Param("pid"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

// @Summary Set line item quantity
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Param input body setQuantityReq true "Quantity"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /carts/{cid}/product/{pid} [put]
func (s *Server) setQuantity(c *gin.Context) {
	var req setQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	view, err := s.svc.Carts.SetQuantity(c, c.Param("cid"), c.Param("pid"), req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

type replaceCartReq struct {
	Products []domain.LineItem `json:"products"`
}

// @Summary Replace all line items
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Param input body replaceCartReq true "Line items"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /carts/{cid} [put]
func (s *Server) replaceCart(c *gin.Context) {
	var req replaceCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	view, err := s.svc.Carts.ReplaceAllLineItems(c, c.Param("cid"), req.Products)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// @Summary Empty the cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Success 200 {object} envelope
// @Router /carts/{cid} [delete]
func (s *Server) clearCart(c *gin.Context) {
	view, err := s.svc.Carts.Clear(c, c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// @Summary Purchase available items
// @Description Buys every line item in stock, issues a ticket and keeps the rest in the cart.
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Cart ID"
// @Success 200 {object} envelope
// @Failure 404 {object} envelope
// @Failure 409 {object} envelope "nothing purchasable; payload lists deferred items"
// @Failure 500 {object} envelope
// @Router /carts/{cid}/purchase [post]
func (s *Server) purchase(c *gin.Context) {
	res, err := s.svc.Purchases.Purchase(c, c.Param("cid"), currentUser(c).Email)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// Ticket handlers

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /tickets [get]
func (s *Server) listTickets(c *gin.Context) {
	list, err := s.svc.Tickets.ListFor(c, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// @Summary Get ticket by code
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param code path string true "Ticket code"
// @Success 200 {object} envelope
// @Failure 403 {object} envelope
// @Failure 404 {object} envelope
// @Router /tickets/{code} [get]
func (s *Server) getTicket(c *gin.Context) {
	t, err := s.svc.Tickets.Get(c, currentUser(c), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

func parseID(c *gin.Context, param string) (string, bool) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "invalid id")
		return "", false
	}
	return id, true
}
