package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/catalog"
	"github.com/shopstock/shopstock/internal/webserver"
)

type categoryProductsPayload struct {
	ProductIDs idList `json:"productIds"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/shops/:shopId/categories", listCategories)
	webserver.ApiPOST("/shops/:shopId/categories", createCategory)
	webserver.ApiPUT("/shops/:shopId/categories/:categoryId", updateCategory)
	webserver.ApiDELETE("/shops/:shopId/categories/:categoryId", deleteCategory)
	webserver.ApiGET("/shops/:shopId/categories/:categoryId/products", listCategoryProducts)
	webserver.ApiPOST("/shops/:shopId/categories/:categoryId/products", addCategoryProducts)
	webserver.ApiPOST("/shops/:shopId/categories/:categoryId/products/remove", removeCategoryProducts)
}

// shopAndCategory reads both path ids.
func shopAndCategory(c echo.Context) (shopID, categoryID int64, err error) {
	if shopID, err = parseIDParam(c, "shopId"); err != nil {
		return 0, 0, err
	}
	if categoryID, err = parseIDParam(c, "categoryId"); err != nil {
		return 0, 0, err
	}
	return shopID, categoryID, nil
}

func listCategories(c echo.Context) error {
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	rows, err := GetAppContext(c).Catalog().ListCategories(c.Request().Context(), shopID, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, rows)
}

func createCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return handleError(c, err)
	}
	var payload catalog.CategoryInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	category, err := GetAppContext(c).Catalog().CreateCategory(c.Request().Context(), user.UserID, shopID, payload)
	if err != nil {
		return handleError(c, err)
	}
	return created(c, category)
}

func updateCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, categoryID, err := shopAndCategory(c)
	if err != nil {
		return handleError(c, err)
	}
	var payload catalog.CategoryInput
	if err := c.Bind(&payload); err != nil {
		return err
	}
	category, err := GetAppContext(c).Catalog().UpdateCategory(c.Request().Context(), user.UserID, shopID, categoryID, payload)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, category)
}

func deleteCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, categoryID, err := shopAndCategory(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := GetAppContext(c).Catalog().DeleteCategory(c.Request().Context(), user.UserID, shopID, categoryID); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Message: "Category deleted successfully."})
}

func listCategoryProducts(c echo.Context) error {
	shopID, categoryID, err := shopAndCategory(c)
	if err != nil {
		return handleError(c, err)
	}
	filter, err := productFilter(c)
	if err != nil {
		return handleError(c, err)
	}
	rows, total, err := GetAppContext(c).Catalog().CategoryProducts(c.Request().Context(), shopID, categoryID, filter)
	if err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, filter.Page, pageSizeOr(filter.PageSize, 10))
}

func addCategoryProducts(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, categoryID, err := shopAndCategory(c)
	if err != nil {
		return handleError(c, err)
	}
	var payload categoryProductsPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	linked, err := GetAppContext(c).Catalog().AddProductsToCategory(c.Request().Context(), user.UserID, shopID, categoryID, payload.ProductIDs)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, map[string]int{"linked": linked})
}

func removeCategoryProducts(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	shopID, categoryID, err := shopAndCategory(c)
	if err != nil {
		return handleError(c, err)
	}
	var payload categoryProductsPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	removed, err := GetAppContext(c).Catalog().RemoveProductsFromCategory(c.Request().Context(), user.UserID, shopID, categoryID, payload.ProductIDs)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, map[string]int64{"removed": removed})
}
