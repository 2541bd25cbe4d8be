package port

import (
	"errors"
	"fmt"
)

// BrokerError 表示券商后端的传输、认证或策略拒绝类失败。
// Retryable 由适配器在翻译后端原生错误时判定，是否重试由调用方决定。
type BrokerError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker %s 调用失败: %v", e.Op, e.Err)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError 包装一个后端错误。
func NewBrokerError(op string, retryable bool, err error) *BrokerError {
	return &BrokerError{Op: op, Retryable: retryable, Err: err}
}

// MarketDataError 表示行情后端的传输、认证或参数不支持类失败。
type MarketDataError struct {
	Op  string
	Err error
}

func (e *MarketDataError) Error() string {
	return fmt.Sprintf("marketdata %s 调用失败: %v", e.Op, e.Err)
}

func (e *MarketDataError) Unwrap() error {
	return e.Err
}

// NewMarketDataError 包装一个行情后端错误。
func NewMarketDataError(op string, err error) *MarketDataError {
	return &MarketDataError{Op: op, Err: err}
}

// IsRetryable 判断错误链中是否存在被标记为可重试的券商错误。
func IsRetryable(err error) bool {
	var brokerErr *BrokerError
	if errors.As(err, &brokerErr) {
		return brokerErr.Retryable
	}
	return false
}
