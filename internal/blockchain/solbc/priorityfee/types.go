// internal/blockchain/solbc/priorityfee/types.go
package priorityfee

import (
	"fmt"
	"strings"
)

// PriorityLevel определяет перцентиль, по которому сервис считает оценку
type PriorityLevel string

const (
	PriorityMin      PriorityLevel = "Min"      // 0-й перцентиль
	PriorityLow      PriorityLevel = "Low"      // 25-й перцентиль
	PriorityMedium   PriorityLevel = "Medium"   // 50-й перцентиль
	PriorityHigh     PriorityLevel = "High"     // 75-й перцентиль
	PriorityVeryHigh PriorityLevel = "VeryHigh" // 95-й перцентиль
	// UnsafeMax берёт максимум за окно и легко сжигает баланс, поэтому выбирается только явно.
	PriorityUnsafeMax PriorityLevel = "UnsafeMax" // 100-й перцентиль

	DefaultPriorityLevel = PriorityMedium
)

var priorityLevels = []PriorityLevel{
	PriorityMin,
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityVeryHigh,
	PriorityUnsafeMax,
}

// ParsePriorityLevel разбирает уровень приоритета без учета регистра.
// Пустая строка означает уровень по умолчанию.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPriorityLevel, nil
	}
	for _, level := range priorityLevels {
		if strings.EqualFold(s, string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown priority level: %q", s)
}

// Valid сообщает, входит ли уровень в допустимый набор
func (p PriorityLevel) Valid() bool {
	for _, level := range priorityLevels {
		if p == level {
			return true
		}
	}
	return false
}

// Request - тело запроса getPriorityFeeEstimate
type Request struct {
	Transaction *string  `json:"transaction"` // сериализованная транзакция, в нашем сценарии всегда nil
	AccountKeys []string `json:"accountKeys"`
	Options     *Options `json:"options"`
}

// Options - параметры расчета оценки
type Options struct {
	PriorityLevel               PriorityLevel `json:"priorityLevel"`
	IncludeAllPriorityFeeLevels bool          `json:"includeAllPriorityFeeLevels"`
	TransactionEncoding         string        `json:"transactionEncoding"`
	LookbackSlots               *uint8        `json:"lookbackSlots"` // nil - значение сервиса (150 слотов)
	Recommended                 bool          `json:"recommended"`
	IncludeVote                 bool          `json:"includeVote"`
}

// Response - ответ сервиса оценки комиссии
type Response struct {
	PriorityFeeEstimate *float64 `json:"priorityFeeEstimate"`
}
