package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/catalog"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/internal/webserver"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", searchProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiGET("/shops/:shopId/products", listShopProducts)
}

func parseDecimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperr.Validation("%s must be a number.", name)
	}
	return &d, nil
}

// productFilter reads the search query: q, category, minPrice, maxPrice,
// stockStatus, sort, order and pagination.
func productFilter(c echo.Context) (repository.ProductFilter, error) {
	f := repository.ProductFilter{
		Query:       strings.TrimSpace(c.QueryParam("q")),
		Category:    strings.TrimSpace(c.QueryParam("category")),
		StockStatus: strings.ToLower(strings.TrimSpace(c.QueryParam("stockStatus"))),
		Sort:        strings.TrimSpace(c.QueryParam("sort")),
		Order:       strings.TrimSpace(c.QueryParam("order")),
	}
	var err error
	if f.MinPrice, err = parseDecimalQuery(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseDecimalQuery(c, "maxPrice"); err != nil {
		return f, err
	}
	f.Page, f.PageSize = parsePagination(c)
	return f, nil
}

func pageSizeOr(size, def int) int {
	if size < 1 {
		return def
	}
	if size > 100 {
		return 100
	}
	return size
}

func searchProducts(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return handleError(c, err)
	}
	rows, total, err := GetAppContext(c).Catalog().SearchProducts(c.Request().Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, filter.Page, pageSizeOr(filter.PageSize, 10))
}

func listShopProducts(c echo.Context) error {
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	filter, err := productFilter(c)
	if err != nil {
		return handleError(c, err)
	}
	rows, total, err := GetAppContext(c).Catalog().ShopProducts(c.Request().Context(), shopID, filter)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, filter.Page, pageSizeOr(filter.PageSize, 10))
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	p, err := GetAppContext(c).Catalog().GetProduct(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	p, err := GetAppContext(c).Catalog().CreateProduct(c.Request().Context(), user.UserID, payload)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "product_create", fmt.Sprintf("create product %s (%d), quantity %d", p.Name, p.ID, p.Quantity))
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	p, err := GetAppContext(c).Catalog().UpdateProduct(c.Request().Context(), id, payload)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "product_update", fmt.Sprintf("update product %s (%d)", p.Name, p.ID))
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	if err := GetAppContext(c).Catalog().DeleteProduct(c.Request().Context(), id); err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "product_delete", fmt.Sprintf("delete product %d", id))
	return c.NoContent(http.StatusNoContent)
}
