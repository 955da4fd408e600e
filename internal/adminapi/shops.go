package adminapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/catalog"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/webserver"
)

type shopView struct {
	*domain.Shop
	URL string `json:"url"`
}

func registerShopRoutes() {
	webserver.ApiGET("/shops", listShops)
	webserver.ApiGET("/shops/slug/:slug", getShopBySlug)
	webserver.ApiGET("/shops/:shopId", getShop)
	webserver.ApiPOST("/shops", createShop)
	webserver.ApiPUT("/shops/:shopId", updateShop)
}

func viewShop(c echo.Context, shop *domain.Shop) shopView {
	return shopView{Shop: shop, URL: GetAppContext(c).Catalog().ShopURL(shop.Slug)}
}

// listShops returns the caller's shops
func listShops(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shops, err := GetAppContext(c).Catalog().ListShops(c.Request().Context(), user.UserID)
	if err != nil {
		return handleError(c, err)
	}
	views := make([]shopView, 0, len(shops))
	for _, shop := range shops {
		views = append(views, viewShop(c, shop))
	}
	return ok(c, views)
}

func getShop(c echo.Context) error {
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	shop, err := GetAppContext(c).Catalog().GetShop(c.Request().Context(), shopID)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, viewShop(c, shop))
}

func getShopBySlug(c echo.Context) error {
	shop, err := GetAppContext(c).Catalog().GetShopBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, viewShop(c, shop))
}

func createShop(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var payload catalog.ShopInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	shop, err := GetAppContext(c).Catalog().CreateShop(c.Request().Context(), user.UserID, payload)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "shop_create", fmt.Sprintf("create shop %s (%d)", shop.Name, shop.ID))
	return created(c, viewShop(c, shop))
}

func updateShop(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	var payload catalog.ShopInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	shop, err := GetAppContext(c).Catalog().UpdateShop(c.Request().Context(), user.UserID, shopID, payload)
	if err != nil {
		return handleError(c, err)
	}
	logOperation(c, user.UserID, "shop_update", fmt.Sprintf("update shop %s (%d), slug %s", shop.Name, shop.ID, shop.Slug))
	return ok(c, viewShop(c, shop))
}
