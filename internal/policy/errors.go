package policy

import "fmt"

// PolicyError 表示归一化无法得到合法结果，例如符号在清洗后为空。
// 与校验错误一样属于输入问题，不可重试。
type PolicyError struct {
	Field  string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("归一化失败: %s [字段: %s]", e.Reason, e.Field)
}
