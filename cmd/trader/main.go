package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"broker-core/internal/account"
	"broker-core/internal/binance"
	"broker-core/internal/config"
	"broker-core/internal/domain"
	"broker-core/internal/indicator"
	"broker-core/internal/log"
	"broker-core/internal/marketdata"
	"broker-core/internal/policy"
	"broker-core/internal/provider"
	"broker-core/internal/store"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	journal, err := store.NewSQLite(cfg.Database)
	if err != nil {
		logger.Error("初始化快照流水库失败", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			logger.Warn("关闭快照流水库失败", zap.Error(closeErr))
		}
	}()

	if err := binance.Register(provider.Default); err != nil {
		logger.Error("注册后端失败", zap.Error(err))
		os.Exit(1)
	}

	builder, err := provider.Resolve(cfg.Provider.Name)
	if err != nil {
		logger.Error("解析后端失败", zap.Error(err))
		os.Exit(1)
	}

	broker, data, err := builder(cfg.Provider, logger)
	if err != nil {
		logger.Error("构建后端失败", zap.Error(err))
		os.Exit(1)
	}

	bars := marketdata.NewService(data, marketdata.Options{
		CacheTTL:        cfg.MarketData.CacheTTL,
		CacheMaxEntries: cfg.MarketData.CacheMaxEntries,
	}, logger)

	svc := account.NewService(broker, bars, account.Options{
		Precision: policy.Precision{
			QtyPlaces:     int32(cfg.Precision.QtyPlaces),
			PricePlaces:   int32(cfg.Precision.PricePlaces),
			PercentPlaces: int32(cfg.Precision.PercentPlaces),
			MoneyPlaces:   int32(cfg.Precision.MoneyPlaces),
		},
		Journal: journal,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, err := svc.Snapshot(ctx, account.SnapshotRequest{
		Symbol:    cfg.Provider.Market,
		Timeframe: domain.TimeframeOneHour,
		BarLimit:  cfg.MarketData.DefaultLimit,
	})
	if err != nil {
		logger.Error("采集账户快照失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("账户快照",
		zap.String("account_id", snapshot.Account.AccountID),
		zap.String("currency", snapshot.Account.Currency),
		zap.String("equity", snapshot.Account.Equity.String()),
		zap.String("buying_power", snapshot.Account.BuyingPower.String()),
		zap.Int("position_count", len(snapshot.Positions)),
	)
	for _, pos := range snapshot.Positions {
		logger.Info("持仓",
			zap.String("symbol", pos.Symbol),
			zap.String("asset_class", string(pos.AssetClass)),
			zap.String("qty", pos.Qty.String()),
			zap.String("avg_price", pos.AvgPrice.String()),
		)
	}

	if len(snapshot.Bars) > 0 {
		summary, err := indicator.NewCalculator().Compute(domain.TimeframeOneHour, snapshot.Bars)
		if err != nil {
			logger.Warn("计算指标失败", zap.Error(err))
		} else {
			logger.Info("行情摘要",
				zap.String("timeframe", summary.Timeframe),
				zap.Float64("close", summary.Close),
				zap.Float64("ema12", summary.EMA12),
				zap.Float64("ema26", summary.EMA26),
				zap.Float64("rsi14", summary.RSI14),
			)
		}
	}

	logger.Info("已完成本次快照采集")
}
