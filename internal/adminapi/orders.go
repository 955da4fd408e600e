package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/order"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/internal/webserver"
)

type respondPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type checkoutResponse struct {
	Message string `json:"message"`
	*order.CheckoutResult
}

func registerOrderRoutes() {
	webserver.ApiPOST("/checkout", checkout)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders/:id/respond", respondToOrder)
	webserver.ApiGET("/order-notifications", listOrderNotifications)
}

// checkout turns the caller's bucket into one order per shop
func checkout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	result, err := GetAppContext(c).Orders().Checkout(c.Request().Context(), user.UserID)
	if err != nil {
		return handleError(c, err)
	}
	for _, o := range result.Orders {
		logOperation(c, user.UserID, "checkout", fmt.Sprintf("order %d placed at shop %s, total %s", o.OrderID, o.ShopName, o.TotalAmount.StringFixed(2)))
	}
	return c.JSON(http.StatusCreated, checkoutResponse{
		Message:        order.CheckoutMessage(result),
		CheckoutResult: result,
	})
}

// parseDateQuery accepts any layout dateparse understands. A bare date used
// as an upper bound covers the whole day.
func parseDateQuery(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	t, err := dateparse.ParseLocal(v)
	if err != nil {
		return nil, apperr.Validation("%s must be a valid date.", name)
	}
	if endOfDay && len(v) <= len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// listOrders returns the caller's order history. With a shopId the caller
// owns, it returns that shop's orders instead.
func listOrders(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	f := repository.OrderFilter{
		UserID:    user.UserID,
		Status:    strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		SortBy:    strings.TrimSpace(c.QueryParam("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(c.QueryParam("sortOrder"))),
	}
	if v := c.QueryParam("shopId"); v != "" {
		var shopID jsonID
		if err := shopID.UnmarshalJSON([]byte(v)); err != nil {
			return handleError(c, err)
		}
		f.ShopID = int64(shopID)
		shop, err := GetAppContext(c).Catalog().GetShop(ctx, f.ShopID)
		if err != nil {
			return handleError(c, err)
		}
		if shop.OwnerID == user.UserID {
			f.UserID = 0
		}
	}
	if f.MinTotal, err = parseDecimalQuery(c, "minTotal"); err != nil {
		return handleError(c, err)
	}
	if f.MaxTotal, err = parseDecimalQuery(c, "maxTotal"); err != nil {
		return handleError(c, err)
	}
	if f.StartDate, err = parseDateQuery(c, "startDate", false); err != nil {
		return handleError(c, err)
	}
	if f.EndDate, err = parseDateQuery(c, "endDate", true); err != nil {
		return handleError(c, err)
	}
	f.Page, f.PageSize = parsePagination(c)

	rows, total, err := GetAppContext(c).Orders().History(ctx, f)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, f.Page, pageSizeOr(f.PageSize, 10))
}

func getOrder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	o, err := GetAppContext(c).Orders().GetOrder(c.Request().Context(), user.UserID, id)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, o)
}

// respondToOrder records the shop owner's ACCEPTED or REJECTED decision
func respondToOrder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var payload respondPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	n, err := GetAppContext(c).Orders().RespondAsOwner(c.Request().Context(), user.UserID, id, payload.Status, payload.Message)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "order_respond", fmt.Sprintf("order %d %s", id, strings.ToLower(n.Status)))
	return c.JSON(http.StatusOK, Response{
		Message: fmt.Sprintf("Order %s successfully.", strings.ToLower(n.Status)),
		Data:    n,
	})
}

func listOrderNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	rows, err := GetAppContext(c).Orders().OwnerOrderNotifications(c.Request().Context(), user.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, rows)
}
