// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
	Encoding            solana.EncodingType
	MaxRetries          *uint   // nil - решает нода, 0 - без повторной отправки
	MinContextSlot      *uint64 // nil - без ограничения
}

// Client определяет общий интерфейс для взаимодействия с блокчейном.
type Client interface {
	// Получить последний blockhash с заданным уровнем commitment.
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error)
	// Отправить транзакцию с опциями.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// Уровень commitment, с которым настроен клиент.
	Commitment() rpc.CommitmentType
	// URL RPC ноды.
	RPCURL() string
}
