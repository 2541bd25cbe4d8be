package binance

import (
	"go.uber.org/zap"

	"broker-core/internal/config"
	"broker-core/internal/port"
	"broker-core/internal/provider"
)

// Name 是本后端在注册表中的名称。
const Name = "binanceusdm"

// Register 将本后端注册到指定注册表，应在进程启动阶段调用一次。
func Register(r *provider.Registry) error {
	return r.Register(Name, func(cfg config.ProviderConfig, logger *zap.Logger) (port.Broker, port.MarketData, error) {
		client, err := New(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	})
}
