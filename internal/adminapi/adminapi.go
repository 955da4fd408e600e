package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/app"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/webserver"
	"github.com/shopstock/shopstock/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Init registers every admin API route on the web server. webserver.Init
// must have been called first.
func Init() {
	registerShopRoutes()
	registerCategoryRoutes()
	registerProductRoutes()
	registerInventoryRoutes()
	registerBucketRoutes()
	registerOrderRoutes()
	registerNotificationRoutes()
	registerSystemRoutes()
}

type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type ListResponse struct {
	Data interface{} `json:"data"`
	Meta PageMeta    `json:"meta"`
}

type ErrorResponse struct {
	Code    string      `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Data: data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	if page < 1 {
		page = 1
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return c.JSON(http.StatusOK, ListResponse{
		Data: data,
		Meta: PageMeta{Total: total, Page: page, PageSize: pageSize, TotalPages: pages},
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Error: message, Details: details})
}

// handleError translates service errors into responses. Anything that is not
// one of the apperr kinds is logged and hidden behind an opaque 500.
func handleError(c echo.Context, err error) error {
	var (
		verr *apperr.ValidationError
		nf   *apperr.NotFoundError
		cf   *apperr.ConflictError
		fb   *apperr.ForbiddenError
		is   *apperr.InsufficientStockError
		eb   *apperr.EmptyBucketError
	)
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", verr.Message, nil)
	case errors.As(err, &eb):
		return fail(c, http.StatusBadRequest, "EMPTY_BUCKET", eb.Error(), nil)
	case errors.As(err, &is):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", is.Error(), map[string]interface{}{
			"productId":   strconv.FormatInt(is.ProductID, 10),
			"productName": is.ProductName,
			"available":   is.Available,
			"requested":   is.Requested,
		})
	case errors.As(err, &nf):
		return fail(c, http.StatusNotFound, "NOT_FOUND", capitalize(nf.Error()), nil)
	case errors.As(err, &cf):
		return fail(c, http.StatusConflict, "CONFLICT", cf.Message, nil)
	case errors.As(err, &fb):
		return fail(c, http.StatusForbidden, "FORBIDDEN", fb.Message, nil)
	}
	zap.L().Error("request failed",
		zap.String("namespace", "adminapi"),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error.", nil)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func GetAppContext(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// currentUser returns the caller's identity or a 401 error for echo to render.
func currentUser(c echo.Context) (*webserver.Claims, error) {
	claims, err := webserver.CurrentUser(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required").SetInternal(err)
	}
	return claims, nil
}

// parsePagination reads page and pageSize (limit and perPage are accepted as
// aliases). Missing values come back as zero so the services apply defaults.
func parsePagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	for _, name := range []string{"pageSize", "limit", "perPage"} {
		if v := c.QueryParam(name); v != "" {
			pageSize, _ = strconv.Atoi(v)
			break
		}
	}
	if page < 0 {
		page = 0
	}
	if pageSize < 0 {
		pageSize = 0
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid %s.", name)
	}
	return id, nil
}

// logOperation writes an audit row. Failures are logged and ignored.
func logOperation(c echo.Context, userID int64, action, desc string) {
	entry := &domain.SysOprLog{
		ID:        common.UUIDint64(),
		UserID:    userID,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	if err := GetDB(c).Create(entry).Error; err != nil {
		zap.L().Warn("write operation log failed", zap.String("namespace", "adminapi"), zap.Error(err))
	}
}

// idList decodes a JSON array of ids sent either as strings or as numbers.
type idList []int64

func (l *idList) UnmarshalJSON(data []byte) error {
	var raw []jsoniter.RawMessage
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return apperr.Validation("productIds must be an array of ids.")
	}
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		id, err := strconv.ParseInt(strings.Trim(string(item), `"`), 10, 64)
		if err != nil {
			return apperr.Validation("Invalid product id %s.", string(item))
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// jsonID is an id that may arrive as a JSON string or number.
type jsonID int64

func (id *jsonID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return apperr.Validation("Invalid id %s.", string(data))
	}
	*id = jsonID(v)
	return nil
}
