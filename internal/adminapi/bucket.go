package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/order"
	"github.com/shopstock/shopstock/internal/webserver"
)

type bucketAddPayload struct {
	ShopID jsonID            `json:"shopId"`
	Items  []order.ItemInput `json:"items"`
}

type bucketRemovePayload struct {
	ShopID     jsonID `json:"shopId"`
	ProductIDs idList `json:"productIds"`
}

func registerBucketRoutes() {
	webserver.ApiGET("/bucket", getBucket)
	webserver.ApiPOST("/bucket/items", addBucketItems)
	webserver.ApiPOST("/bucket/items/remove", removeBucketItems)
}

func getBucket(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	lines, err := GetAppContext(c).Orders().Items(c.Request().Context(), user.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, lines)
}

func addBucketItems(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var payload bucketAddPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	added, updated, err := GetAppContext(c).Orders().AddItems(c.Request().Context(), user.UserID, int64(payload.ShopID), payload.Items)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Items added to bucket successfully.",
		Data:    map[string]int{"added": added, "updated": updated},
	})
}

func removeBucketItems(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var payload bucketRemovePayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	removed, err := GetAppContext(c).Orders().RemoveItems(c.Request().Context(), user.UserID, int64(payload.ShopID), payload.ProductIDs)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Items removed from bucket successfully.",
		Data:    map[string]int64{"removed": removed},
	})
}
