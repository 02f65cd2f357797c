// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
)

var (
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrTransactionFailed   = errors.New("transaction failed on-chain")
	ErrNoEstimator         = errors.New("priority fee requested but no estimator configured")
)

// FeeEstimator возвращает цену compute unit (микролампорты) для набора инструкций
type FeeEstimator interface {
	Estimate(ctx context.Context, instructions []solana.Instruction) (uint64, error)
}

// Signer - плательщик комиссии и подписант транзакции
type Signer interface {
	Address() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// SendOptions - фиксированная политика отправки: preflight включен с commitment Confirmed,
// base64, без повторной отправки нодой и без ограничения по минимальному слоту.
func SendOptions() blockchain.TransactionOptions {
	maxRetries := uint(0)
	return blockchain.TransactionOptions{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
		Encoding:            solana.EncodingBase64,
		MaxRetries:          &maxRetries,
		MinContextSlot:      nil,
	}
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFinalized = "finalized"
	StatusFailed    = "failed"
)

// MonitorConfig задает частоту опроса статуса и общий таймаут ожидания
type MonitorConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
}

// DefaultMonitorConfig возвращает конфигурацию по умолчанию
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     4 * time.Second,
		Timeout:         30 * time.Second,
	}
}

type Status struct {
	Signature     string
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
