package adminapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/webserver"
	"gorm.io/gorm"
)

// TableInfo reports the row count of one application table
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"rowCount"`
}

func registerSystemRoutes() {
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", saveSettings)
	webserver.ApiGET("/system/tables", listTables)
	webserver.ApiGET("/system/oprlogs", listOprLogs)
	webserver.ApiPOST("/system/jobs/low-stock-sweep/run", runLowStockSweep)
}

func listSettings(c echo.Context) error {
	var rows []domain.SysConfig
	if err := GetDB(c).Order("type, sort, name").Find(&rows).Error; err != nil {
		return handleError(c, err)
	}
	return ok(c, rows)
}

// saveSettings upserts {"category.name": value} pairs
func saveSettings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if len(payload) == 0 {
		return handleError(c, apperr.Validation("No settings given."))
	}
	appCtx := GetAppContext(c)
	if err := appCtx.SaveSettings(payload); err != nil {
		return handleError(c, apperr.Validation("%s", err.Error()))
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	logOperation(c, user.UserID, "settings_update", fmt.Sprintf("update settings %v", keys))
	return c.JSON(http.StatusOK, Response{Message: "Settings saved successfully.", Data: appCtx.ConfigMgr().Inventory()})
}

// listTables returns the row count of every migrated table
func listTables(c echo.Context) error {
	db := GetDB(c)
	tables := make([]TableInfo, 0, len(domain.Tables))
	for _, model := range domain.Tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return handleError(c, err)
		}
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return handleError(c, err)
		}
		tables = append(tables, TableInfo{Name: stmt.Schema.Table, RowCount: count})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return ok(c, tables)
}

func listOprLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	if page < 1 {
		page = 1
	}
	pageSize = pageSizeOr(pageSize, 20)

	query := GetDB(c).Model(&domain.SysOprLog{})
	if action := c.QueryParam("action"); action != "" {
		query = query.Where("opt_action = ?", action)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return handleError(c, err)
	}
	var rows []domain.SysOprLog
	if err := query.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return handleError(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

// runLowStockSweep runs the scheduled low stock sweep immediately
func runLowStockSweep(c echo.Context) error {
	n, err := GetAppContext(c).RunLowStockSweep()
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, map[string]int64{"lowStockProducts": n})
}
