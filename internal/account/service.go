package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"broker-core/internal/domain"
	"broker-core/internal/policy"
	"broker-core/internal/port"
	"broker-core/internal/store"
)

// PlaceOrderParams 以原始参数描述一笔下单请求。
type PlaceOrderParams struct {
	Symbol        string
	Side          domain.Side
	Type          domain.OrderType
	TimeInForce   domain.TimeInForce
	Qty           *decimal.Decimal
	Notional      *decimal.Decimal
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
	TrailPrice    *decimal.Decimal
	TrailPercent  *decimal.Decimal
	ClientOrderID string
	AssetClass    domain.AssetClass
}

// Options 控制门面服务的行为。
type Options struct {
	Precision policy.Precision
	// Journal 可选，设置后每次 Snapshot 会落一条审计流水。
	Journal *store.Journal
}

// Service 是跨券商的账户/下单门面：归一化策略与端口调用在此汇合。
// 它不做重试、不做缓存、不含任何风控或策略逻辑，这些都由外层负责。
type Service struct {
	broker  port.Broker
	data    port.MarketData
	prec    policy.Precision
	journal *store.Journal
	logger  *zap.Logger
	newID   func() string
}

// NewService 创建门面服务。
func NewService(broker port.Broker, data port.MarketData, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		broker:  broker,
		data:    data,
		prec:    opts.Precision,
		journal: opts.Journal,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// PlaceOrder 构造并校验订单请求、归一化后委托给 Broker。
// 调用方未提供 client_order_id 时自动生成一个。
func (s *Service) PlaceOrder(ctx context.Context, params PlaceOrderParams) (domain.Order, error) {
	req, err := domain.NewOrderRequest(domain.OrderRequest{
		Symbol:        params.Symbol,
		Side:          params.Side,
		Type:          params.Type,
		TimeInForce:   params.TimeInForce,
		Qty:           params.Qty,
		Notional:      params.Notional,
		LimitPrice:    params.LimitPrice,
		StopPrice:     params.StopPrice,
		TrailPrice:    params.TrailPrice,
		TrailPercent:  params.TrailPercent,
		ClientOrderID: params.ClientOrderID,
		AssetClass:    params.AssetClass,
	})
	if err != nil {
		return domain.Order{}, err
	}

	if req.ClientOrderID == "" {
		req.ClientOrderID = s.newID()
	}

	req, err = policy.NormalizeOrderRequest(req, s.prec, policy.DefaultSymbolOptions())
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.broker.PlaceOrder(ctx, req)
	if err != nil {
		s.logger.Error("下单失败",
			zap.String("symbol", req.Symbol),
			zap.String("side", string(req.Side)),
			zap.String("type", string(req.Type)),
			zap.Error(err),
		)
		return domain.Order{}, err
	}

	s.logger.Info("下单完成",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}

// Cancel 尝试撤单，订单已成交或不存在时返回 false。
func (s *Service) Cancel(ctx context.Context, orderID string) (bool, error) {
	canceled, err := s.broker.CancelOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !canceled {
		s.logger.Info("撤单未生效", zap.String("order_id", orderID))
	}
	return canceled, nil
}

// GetOrder 按ID查询订单，未找到返回 (nil, nil)。
func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.broker.GetOrder(ctx, orderID)
}

// GetBars 委托给行情端口，排序与缓存由注入的实现（通常是
// marketdata.Service 装饰器）负责。
func (s *Service) GetBars(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Bar, error) {
	return s.data.GetBars(ctx, symbol, timeframe, limit)
}

// Positions 拉取并逐条归一化当前持仓。
func (s *Service) Positions(ctx context.Context) ([]domain.Position, error) {
	raw, err := s.broker.GetPositions(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(raw))
	for _, pos := range raw {
		normalized, err := policy.NormalizePosition(pos, s.prec)
		if err != nil {
			return nil, err
		}
		positions = append(positions, normalized)
	}
	return positions, nil
}

// Account 拉取并归一化账户快照。
func (s *Service) Account(ctx context.Context) (domain.Account, error) {
	raw, err := s.broker.GetAccount(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	return policy.NormalizeAccount(raw, s.prec)
}

// SnapshotRequest 控制一次聚合快照采集的参数。
type SnapshotRequest struct {
	Symbol    string
	Timeframe domain.Timeframe
	BarLimit  int
}

// Snapshot 聚合账户、持仓与最近K线。
type Snapshot struct {
	Account     domain.Account
	Positions   []domain.Position
	Bars        []domain.Bar
	RetrievedAt time.Time
}

// Snapshot 并发拉取账户、持仓与K线，配置了流水库时落一条审计记录。
func (s *Service) Snapshot(ctx context.Context, req SnapshotRequest) (Snapshot, error) {
	var (
		acct      domain.Account
		positions []domain.Position
		bars      []domain.Bar
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		result, err := s.Account(groupCtx)
		if err != nil {
			return err
		}
		acct = result
		return nil
	})

	group.Go(func() error {
		result, err := s.Positions(groupCtx)
		if err != nil {
			return err
		}
		positions = result
		return nil
	})

	if req.Symbol != "" {
		group.Go(func() error {
			result, err := s.GetBars(groupCtx, req.Symbol, req.Timeframe, req.BarLimit)
			if err != nil {
				return err
			}
			bars = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Account:     acct,
		Positions:   positions,
		Bars:        bars,
		RetrievedAt: time.Now().UTC(),
	}

	if s.journal != nil {
		if err := s.journal.RecordAccount(ctx, snapshot.Account, snapshot.RetrievedAt); err != nil {
			s.logger.Warn("记录账户快照失败", zap.Error(err))
		}
		if err := s.journal.RecordPositions(ctx, snapshot.Positions, snapshot.RetrievedAt); err != nil {
			s.logger.Warn("记录持仓快照失败", zap.Error(err))
		}
	}

	s.logger.Debug("账户快照采集完成",
		zap.String("account_id", snapshot.Account.AccountID),
		zap.Int("position_count", len(snapshot.Positions)),
		zap.Int("bar_count", len(snapshot.Bars)),
	)

	return snapshot, nil
}
