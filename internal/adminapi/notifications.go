package adminapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/webserver"
)

type markReadPayload struct {
	Read *bool `json:"read"`
}

func registerNotificationRoutes() {
	webserver.ApiGET("/shops/:shopId/notifications", listShopNotifications)
	webserver.ApiPUT("/notifications/:id/read", markNotification)
}

func listShopNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	unread, _ := strconv.ParseBool(c.QueryParam("unread"))
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Inventory().ShopNotifications(c.Request().Context(), user.UserID, shopID, unread, page, pageSize)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, page, pageSizeOr(pageSize, 20))
}

// markNotification sets the read flag of a notification of the caller's
// shop. The body may send {"read": false} to mark it unread again.
func markNotification(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if user.ShopID == 0 {
		return handleError(c, apperr.Forbidden("No shop is associated with the current user."))
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var payload markReadPayload
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&payload); err != nil {
			return err
		}
	}
	read := true
	if payload.Read != nil {
		read = *payload.Read
	}
	n, err := GetAppContext(c).Inventory().MarkNotification(c.Request().Context(), user.ShopID, id, read)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, n)
}
