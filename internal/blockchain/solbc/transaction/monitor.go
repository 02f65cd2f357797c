// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

var errPending = errors.New("transaction pending")

// StatusClient - часть RPC клиента, нужная для опроса статусов
type StatusClient interface {
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Monitor ожидает подтверждения уже отправленной транзакции.
// Повторно опрашивает статус, но никогда не переотправляет транзакцию.
type Monitor struct {
	client StatusClient
	logger *zap.Logger
	config MonitorConfig
}

func NewMonitor(client StatusClient, logger *zap.Logger, config MonitorConfig) *Monitor {
	defaults := DefaultMonitorConfig()
	if config.InitialInterval <= 0 {
		config.InitialInterval = defaults.InitialInterval
	}
	if config.MaxInterval < config.InitialInterval {
		config.MaxInterval = config.InitialInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &Monitor{
		client: client,
		logger: logger.Named("tx-monitor"),
		config: config,
	}
}

func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    StatusPending,
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = StatusFinalized
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = StatusConfirmed
	default:
		txStatus.Status = StatusPending
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = StatusFailed
	}

	return txStatus, nil
}

// AwaitConfirmation опрашивает статус с экспоненциальной задержкой до Confirmed/Finalized.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.config.InitialInterval
	policy.MaxInterval = m.config.MaxInterval

	operation := func() (*Status, error) {
		status, err := m.GetTransactionStatus(ctx, signature)
		if err != nil {
			m.logger.Warn("Confirmation check failed", zap.Error(err))
			return nil, err
		}
		switch status.Status {
		case StatusConfirmed, StatusFinalized:
			return status, nil
		case StatusFailed:
			return status, backoff.Permanent(fmt.Errorf("%w: %s", ErrTransactionFailed, status.Error))
		default:
			return nil, errPending
		}
	}

	status, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(m.config.Timeout))
	if err != nil {
		if errors.Is(err, errPending) {
			return nil, ErrConfirmationTimeout
		}
		return status, err
	}

	m.logger.Info("Transaction confirmed",
		zap.String("signature", signature.String()),
		zap.String("status", status.Status),
		zap.Uint64("slot", status.Slot))
	return status, nil
}
