// internal/blockchain/errors.go
package blockchain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport возникает при ошибке соединения или таймауте
	ErrTransport = errors.New("transport error")

	// ErrDeserialization возникает при получении некорректного ответа
	ErrDeserialization = errors.New("deserialization error")

	// ErrEmptyEstimate возникает, когда сервис ответил, но не вернул оценку комиссии
	ErrEmptyEstimate = errors.New("empty priority fee estimate")

	// ErrSubmissionRejected возникает, когда нода отклонила транзакцию (например, провал preflight)
	ErrSubmissionRejected = errors.New("transaction submission rejected")
)

// Error представляет классифицированную ошибку с дополнительным контекстом
type Error struct {
	Kind error
	Op   string
	Err  error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap возвращает класс ошибки и исходную ошибку,
// поэтому работают и errors.Is(err, ErrTransport), и errors.As для причины.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError создает новую классифицированную ошибку
func NewError(kind error, op string, err error) error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}
