package adminapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/config"
	"github.com/shopstock/shopstock/internal/app"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/testutil"
	"github.com/shopstock/shopstock/internal/webserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerA = int64(10)
	ownerB = int64(20)
	buyer  = int64(30)
)

type apiTest struct {
	t      *testing.T
	app    *app.Application
	e      *echo.Echo
	secret string
}

func newAPITest(t *testing.T) *apiTest {
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Auth.JwtSecret = "adminapi-test"
	cfg.Events.PoolSize = 2

	a := app.NewApplication(cfg)
	a.OverrideDB(testutil.OpenDB(t))
	a.Init(cfg)
	t.Cleanup(a.Release)

	webserver.Init(a)
	Init()
	return &apiTest{t: t, app: a, e: webserver.Echo(), secret: cfg.Auth.JwtSecret}
}

func (at *apiTest) token(uid, shopID int64) string {
	token, err := webserver.IssueToken(at.secret, uid, shopID, time.Hour)
	require.NoError(at.t, err)
	return token
}

func (at *apiTest) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := jsoniter.Marshal(body)
		require.NoError(at.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	at.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

type idResponse struct {
	Data struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
		URL  string `json:"url"`
	} `json:"data"`
}

// sellingShop creates a shop for owner with one category and one product.
func (at *apiTest) sellingShop(owner int64, shopName, productName string, price float64, qty, minimum int) (shopID, productID string) {
	tok := at.token(owner, 0)

	rec := at.do(http.MethodPost, "/shops", tok, map[string]interface{}{"name": shopName})
	require.Equal(at.t, http.StatusCreated, rec.Code, rec.Body.String())
	var shop idResponse
	decode(at.t, rec, &shop)

	rec = at.do(http.MethodPost, "/shops/"+shop.Data.ID+"/categories", tok, map[string]interface{}{"name": "General"})
	require.Equal(at.t, http.StatusCreated, rec.Code, rec.Body.String())
	var category idResponse
	decode(at.t, rec, &category)

	rec = at.do(http.MethodPost, "/products", tok, map[string]interface{}{
		"name":         productName,
		"price":        price,
		"quantity":     qty,
		"minimumStock": minimum,
	})
	require.Equal(at.t, http.StatusCreated, rec.Code, rec.Body.String())
	var product idResponse
	decode(at.t, rec, &product)

	rec = at.do(http.MethodPost, "/shops/"+shop.Data.ID+"/categories/"+category.Data.ID+"/products", tok,
		map[string]interface{}{"productIds": []string{product.Data.ID}})
	require.Equal(at.t, http.StatusOK, rec.Code, rec.Body.String())
	return shop.Data.ID, product.Data.ID
}

func (at *apiTest) addToBucket(shopID, productID string, qty int) *httptest.ResponseRecorder {
	return at.do(http.MethodPost, "/bucket/items", at.token(buyer, 0), map[string]interface{}{
		"shopId": shopID,
		"items":  []map[string]interface{}{{"productId": productID, "quantity": qty}},
	})
}

type checkoutBody struct {
	Message string `json:"message"`
	Orders  []struct {
		OrderID     string `json:"orderId"`
		ShopID      string `json:"shopId"`
		ShopName    string `json:"shopName"`
		TotalAmount string `json:"totalAmount"`
		Status      string `json:"status"`
		Items       []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	} `json:"orders"`
	UpdatedNotifications []struct {
		OwnerID       string `json:"ownerId"`
		Notifications []struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"notifications"`
	} `json:"updatedNotifications"`
}

func TestRequiresToken(t *testing.T) {
	at := newAPITest(t)
	rec := at.do(http.MethodPost, "/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	at := newAPITest(t)
	shopA, productX := at.sellingShop(ownerA, "Alpha Goods", "Widget", 10, 5, 4)
	shopB, productY := at.sellingShop(ownerB, "Beta Goods", "Gadget", 50, 3, 0)

	require.Equal(t, http.StatusOK, at.addToBucket(shopA, productX, 2).Code)
	require.Equal(t, http.StatusOK, at.addToBucket(shopB, productY, 1).Code)

	rec := at.do(http.MethodGet, "/bucket", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bucket struct {
		Data []struct {
			ProductID      string `json:"productId"`
			AvailableStock int    `json:"availableStock"`
			Quantity       int    `json:"quantity"`
		} `json:"data"`
	}
	decode(t, rec, &bucket)
	require.Len(t, bucket.Data, 2)
	assert.Equal(t, productX, bucket.Data[0].ProductID)
	assert.Equal(t, 5, bucket.Data[0].AvailableStock)

	rec = at.do(http.MethodPost, "/checkout", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body checkoutBody
	decode(t, rec, &body)
	assert.Equal(t, "2 order(s) created and notifications sent.", body.Message)
	require.Len(t, body.Orders, 2)
	assert.Equal(t, shopA, body.Orders[0].ShopID)
	assert.Equal(t, "Alpha Goods", body.Orders[0].ShopName)
	assert.Equal(t, "20", body.Orders[0].TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, body.Orders[0].Status)
	assert.Equal(t, "50", body.Orders[1].TotalAmount)
	assert.Len(t, body.UpdatedNotifications, 2)

	rec = at.do(http.MethodGet, "/bucket", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &bucket)
	assert.Empty(t, bucket.Data)

	// the sale took Widget from 5 to 3, below its minimum of 4
	rec = at.do(http.MethodGet, "/shops/"+shopA+"/notifications?unread=true", at.token(ownerA, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var notes struct {
		Data []struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	decode(t, rec, &notes)
	require.EqualValues(t, 1, notes.Meta.Total)
	assert.Equal(t, domain.NotificationTypeLowStock, notes.Data[0].Type)

	rec = at.do(http.MethodPut, "/notifications/"+notes.Data[0].ID+"/read", at.token(ownerB, mustID(t, shopB)), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = at.do(http.MethodPut, "/notifications/"+notes.Data[0].ID+"/read", at.token(ownerA, mustID(t, shopA)), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = at.do(http.MethodGet, "/orders", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Meta PageMeta `json:"meta"`
	}
	decode(t, rec, &history)
	assert.EqualValues(t, 2, history.Meta.Total)

	rec = at.do(http.MethodGet, "/orders?shopId="+shopA+"&sortBy=totalAmount&startDate=2000-01-01", at.token(ownerA, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &history)
	assert.EqualValues(t, 1, history.Meta.Total)

	rec = at.do(http.MethodGet, "/orders/"+body.Orders[1].OrderID, at.token(ownerA, 0), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = at.do(http.MethodGet, "/orders/"+body.Orders[1].OrderID, at.token(ownerB, 0), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRespondToOrder(t *testing.T) {
	at := newAPITest(t)
	shopA, productX := at.sellingShop(ownerA, "Alpha Goods", "Widget", 10, 5, 0)
	require.Equal(t, http.StatusOK, at.addToBucket(shopA, productX, 1).Code)
	rec := at.do(http.MethodPost, "/checkout", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body checkoutBody
	decode(t, rec, &body)
	orderID := body.Orders[0].OrderID
	path := "/orders/" + orderID + "/respond"

	rec = at.do(http.MethodPost, path, at.token(ownerA, 0), map[string]string{"status": "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status. Use ACCEPTED or REJECTED.")

	rec = at.do(http.MethodPost, path, at.token(ownerB, 0), map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = at.do(http.MethodPost, "/orders/12345/respond", at.token(ownerA, 0), map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = at.do(http.MethodPost, path, at.token(ownerA, 0), map[string]string{"status": "accepted", "message": "ready"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"data"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "Order accepted successfully.", resp.Message)
	assert.Equal(t, domain.OrderStatusAccepted, resp.Data.Status)
	assert.Equal(t, "ready", resp.Data.Message)

	rec = at.do(http.MethodGet, "/order-notifications", at.token(ownerA, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, domain.OrderStatusAccepted, list.Data[0].Status)

	var logs int64
	require.NoError(t, at.app.DB().Model(&domain.SysOprLog{}).Where("opt_action = ?", "order_respond").Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}

func TestCheckoutErrors(t *testing.T) {
	at := newAPITest(t)

	rec := at.do(http.MethodPost, "/checkout", at.token(buyer, 0), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody ErrorResponse
	decode(t, rec, &errBody)
	assert.Equal(t, "EMPTY_BUCKET", errBody.Code)

	shopA, productZ := at.sellingShop(ownerA, "Alpha Goods", "Zed", 5, 3, 0)
	require.Equal(t, http.StatusOK, at.addToBucket(shopA, productZ, 3).Code)
	require.Equal(t, http.StatusOK, at.do(http.MethodPut, "/shops/"+shopA+"/products/"+productZ+"/quantity",
		at.token(ownerA, 0), map[string]interface{}{"quantity": 1}).Code)

	rec = at.do(http.MethodPost, "/checkout", at.token(buyer, 0), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var stockErr struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Details struct {
			ProductName string `json:"productName"`
			Available   int    `json:"available"`
			Requested   int    `json:"requested"`
		} `json:"details"`
	}
	decode(t, rec, &stockErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	assert.Equal(t, "Insufficient stock for Zed. Available: 1, Requested: 3", stockErr.Error)
	assert.Equal(t, 1, stockErr.Details.Available)
	assert.Equal(t, 3, stockErr.Details.Requested)

	rec = at.do(http.MethodGet, "/bucket", at.token(buyer, 0), nil)
	assert.Contains(t, rec.Body.String(), productZ)
}

func TestCatalogEndpoints(t *testing.T) {
	at := newAPITest(t)
	shopA, productX := at.sellingShop(ownerA, "Alpha Goods", "Widget", 10, 5, 0)

	rec := at.do(http.MethodPost, "/shops", at.token(ownerB, 0), map[string]string{"name": "Alpha Goods"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = at.do(http.MethodGet, "/shops/slug/alpha-goods", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shop idResponse
	decode(t, rec, &shop)
	assert.Equal(t, shopA, shop.Data.ID)
	assert.True(t, strings.HasSuffix(shop.Data.URL, "/shops/alpha-goods"))

	rec = at.do(http.MethodPut, "/shops/"+shopA, at.token(ownerB, 0), map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = at.do(http.MethodGet, "/products?q=widg&stockStatus=in", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Meta PageMeta `json:"meta"`
	}
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Meta.Total)

	rec = at.do(http.MethodGet, "/products?stockStatus=gone", at.token(buyer, 0), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = at.do(http.MethodGet, "/products?minPrice=abc", at.token(buyer, 0), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = at.do(http.MethodGet, "/shops/"+shopA+"/products", at.token(buyer, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Meta.Total)

	shopB, _ := at.sellingShop(ownerB, "Beta Goods", "Gadget", 3, 2, 0)
	rec = at.do(http.MethodPut, "/shops/"+shopB+"/products/"+productX+"/quantity", at.token(ownerB, 0),
		map[string]interface{}{"quantity": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = at.do(http.MethodPut, "/shops/"+shopA+"/products/"+productX+"/quantity", at.token(ownerA, 0),
		map[string]interface{}{"quantity": 8, "action": "restock", "note": "delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = at.do(http.MethodGet, "/products/"+productX+"/stock-history?format=csv", at.token(ownerA, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "restock")
	assert.Contains(t, lines[2], domain.ChangeTypeInitialStock)

	rec = at.do(http.MethodDelete, "/products/"+productX, at.token(ownerA, 0), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = at.do(http.MethodGet, "/products/"+productX, at.token(ownerA, 0), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = at.do(http.MethodGet, "/products/abc", at.token(ownerA, 0), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	at := newAPITest(t)
	at.sellingShop(ownerA, "Alpha Goods", "Widget", 10, 1, 3)
	tok := at.token(ownerA, 0)

	rec := at.do(http.MethodPost, "/system/jobs/low-stock-sweep/run", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"lowStockProducts":1}}`, rec.Body.String())

	rec = at.do(http.MethodPut, "/system/settings", tok, map[string]interface{}{"inventory.DashboardWindowDays": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7, at.app.ConfigMgr().Inventory().DashboardWindowDays)

	rec = at.do(http.MethodGet, "/dashboard/summary", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Data struct {
			TotalProducts    int64 `json:"totalProducts"`
			LowStockProducts int64 `json:"lowStockProducts"`
			WindowDays       int   `json:"windowDays"`
		} `json:"data"`
	}
	decode(t, rec, &summary)
	assert.EqualValues(t, 1, summary.Data.TotalProducts)
	assert.EqualValues(t, 1, summary.Data.LowStockProducts)
	assert.Equal(t, 7, summary.Data.WindowDays)

	rec = at.do(http.MethodGet, "/system/tables", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tables struct {
		Data []TableInfo `json:"data"`
	}
	decode(t, rec, &tables)
	counts := map[string]int64{}
	for _, table := range tables.Data {
		counts[table.Name] = table.RowCount
	}
	assert.EqualValues(t, 1, counts["shop"])
	assert.EqualValues(t, 1, counts["product"])

	rec = at.do(http.MethodGet, "/system/oprlogs?action=shop_create", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs struct {
		Meta PageMeta `json:"meta"`
	}
	decode(t, rec, &logs)
	assert.EqualValues(t, 1, logs.Meta.Total)
}

func mustID(t *testing.T, s string) int64 {
	var id jsonID
	require.NoError(t, id.UnmarshalJSON([]byte(s)))
	return int64(id)
}
