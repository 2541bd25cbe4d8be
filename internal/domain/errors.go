package domain

import (
	"fmt"
	"strings"
)

// ValidationRule 标识订单校验失败时违反的规则类别。
type ValidationRule string

const (
	// RuleExclusivity 表示 qty/notional 互斥约束被违反。
	RuleExclusivity ValidationRule = "exclusivity"
	// RulePositivity 表示数值字段必须严格为正的约束被违反。
	RulePositivity ValidationRule = "positivity"
	// RuleTypeFieldMismatch 表示字段组合与订单类型不匹配。
	RuleTypeFieldMismatch ValidationRule = "type_field_mismatch"
)

// ValidationError 表示 OrderRequest 构造期间的不变量违反。
// 这类错误属于调用方输入错误，不可重试。
type ValidationError struct {
	Rule   ValidationRule
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("订单校验失败(%s): %s", e.Rule, e.Reason)
	}
	return fmt.Sprintf("订单校验失败(%s): %s [字段: %s]", e.Rule, e.Reason, strings.Join(e.Fields, ", "))
}

func newValidationError(rule ValidationRule, reason string, fields ...string) *ValidationError {
	return &ValidationError{Rule: rule, Fields: fields, Reason: reason}
}
