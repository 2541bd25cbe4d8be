package port

import (
	"context"

	"broker-core/internal/domain"
)

// Broker 是所有券商后端必须满足的能力接口。
// 满足该方法集的任意类型即可作为后端接入，不存在公共基类。
//
// 实现方需在错误跨入领域层之前将后端原生错误翻译为 *BrokerError；
// 领域层不会吞掉端口错误，也不会自动重试。
type Broker interface {
	// PlaceOrder 提交一笔已归一化的订单请求，返回后端当前视角的订单。
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)

	// CancelOrder 尝试撤单。订单已成交、已撤销或不存在时返回 false
	// 而非错误；错误仅表示传输/认证层面的失败。
	CancelOrder(ctx context.Context, orderID string) (bool, error)

	// GetOrder 按ID查询订单，未找到返回 (nil, nil)。
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// GetPositions 返回当前全部持仓。
	GetPositions(ctx context.Context) ([]domain.Position, error)

	// GetAccount 返回账户快照。
	GetAccount(ctx context.Context) (domain.Account, error)
}
