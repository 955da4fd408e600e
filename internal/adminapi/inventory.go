package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/inventory"
	"github.com/shopstock/shopstock/internal/webserver"
)

func registerInventoryRoutes() {
	webserver.ApiPUT("/shops/:shopId/products/:id/quantity", updateQuantity)
	webserver.ApiGET("/products/:id/stock-history", listStockHistory)
	webserver.ApiGET("/dashboard/summary", dashboardSummary)
}

// updateQuantity overwrites the on-hand quantity of a product sold by the
// caller's shop.
func updateQuantity(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	appCtx := GetAppContext(c)
	shop, err := appCtx.Catalog().GetShop(c.Request().Context(), shopID)
	if err != nil {
		return handleError(c, err)
	}
	if shop.OwnerID != user.UserID {
		return handleError(c, apperr.Forbidden("shop %d is not managed by the current user", shopID))
	}

	var payload inventory.QuantityUpdate
	if err := c.Bind(&payload); err != nil {
		return err
	}
	payload.ShopID = shopID
	payload.ProductID = productID
	payload.UserID = user.UserID

	p, err := appCtx.Inventory().UpdateQuantity(c.Request().Context(), payload)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "stock_update", fmt.Sprintf("set quantity of %s (%d) to %d", p.Name, p.ID, p.Quantity))
	return c.JSON(http.StatusOK, Response{Message: "Product quantity updated successfully.", Data: p})
}

// listStockHistory returns the ledger of a product; format=csv downloads
// the full ledger instead of a page.
func listStockHistory(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	svc := GetAppContext(c).Inventory()
	if c.QueryParam("format") == "csv" {
		var buf bytes.Buffer
		if err := svc.ExportStockHistory(c.Request().Context(), productID, &buf); err != nil {
			return handleError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			"attachment; filename=stock_history_"+strconv.FormatInt(productID, 10)+".csv")
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
	page, pageSize := parsePagination(c)
	rows, total, err := svc.StockHistory(c.Request().Context(), productID, page, pageSize)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, page, pageSizeOr(pageSize, 20))
}

func dashboardSummary(c echo.Context) error {
	appCtx := GetAppContext(c)
	window := appCtx.ConfigMgr().Inventory().DashboardWindowDays
	if v, err := strconv.Atoi(c.QueryParam("days")); err == nil && v > 0 {
		window = v
	}
	sum, err := appCtx.Inventory().Summary(c.Request().Context(), window)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, sum)
}
