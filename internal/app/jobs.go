package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/metrics"
	"go.uber.org/zap"
)

const (
	MetricLowStockProducts = "shopstock_low_stock_products"
	MetricOrdersPlaced     = "shopstock_orders_placed"
	MetricOrdersResponded  = "shopstock_orders_responded"
	MetricLowStockAlerts   = "shopstock_low_stock_alerts"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	sweepSpec := a.configManager.Inventory().LowStockSweepCron
	_, err = a.sched.AddFunc(sweepSpec, a.SchedLowStockSweepTask)
	if err != nil {
		zap.S().Errorf("init low stock sweep job %q error %s, falling back to @every 5m", sweepSpec, err.Error())
		_, _ = a.sched.AddFunc("@every 5m", a.SchedLowStockSweepTask)
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// RunLowStockSweep counts products below their minimum and records the gauge.
func (a *Application) RunLowStockSweep() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := a.inventory.CountLowStock(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SetGauge(MetricLowStockProducts, n)
	return n, nil
}

func (a *Application) SchedLowStockSweepTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.RunLowStockSweep()
	if err != nil {
		zap.L().Error("low stock sweep failed", zap.String("namespace", "job"), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("low stock products", zap.String("namespace", "job"), zap.Int64("count", n))
	}
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // percentage * 100
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("shopstock_cpuuse", int64(cpuuse*100)) // percentage * 100
	}
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("shopstock_memuse", int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedClearExpireData prunes read notifications and old operation logs.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	days := a.configManager.Inventory().NotificationRetentionDays
	if days <= 0 {
		days = 30
	}
	n, err := a.store.Notifications.DeleteReadBefore(context.Background(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		zap.L().Error("prune notifications failed", zap.String("namespace", "job"), zap.Error(err))
	} else if n > 0 {
		zap.L().Info("pruned read notifications", zap.String("namespace", "job"), zap.Int64("count", n))
	}

	logDays := a.configManager.GetInt("system", "OprLogRetentionDays")
	if logDays <= 0 {
		logDays = 365
	}
	a.gormDB.
		Where("opt_time < ? ", time.Now().AddDate(0, 0, -logDays)).
		Delete(&domain.SysOprLog{})
}
