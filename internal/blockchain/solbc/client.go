// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
	"go.uber.org/zap"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
// Безопасен для конкурентного использования.
type Client struct {
	rpc        *rpc.Client
	url        string
	commitment rpc.CommitmentType
	analyzer   *ErrorAnalyzer
	logger     *zap.Logger
}

// NewClient создаёт новый клиент, принимая RPC URL, уровень commitment и логгер через dependency injection.
func NewClient(rpcURL string, commitment rpc.CommitmentType, logger *zap.Logger) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpc.New(rpcURL),
		url:        rpcURL,
		commitment: commitment,
		analyzer:   NewErrorAnalyzer(logger),
		logger:     logger.Named("solbc-client"),
	}
}

// RPCURL возвращает адрес RPC ноды.
func (c *Client) RPCURL() string {
	return c.url
}

// Commitment возвращает уровень commitment клиента.
func (c *Client) Commitment() rpc.CommitmentType {
	return c.commitment
}

// GetLatestBlockhash получает последний blockhash с заданным commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, blockchain.NewError(blockchain.ErrTransport, "get latest blockhash", err)
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, blockchain.NewError(blockchain.ErrDeserialization, "get latest blockhash",
			errors.New("empty result"))
	}
	return result.Value.Blockhash, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
// Отказ ноды (JSON-RPC ошибка, например провал preflight) классифицируется как ErrSubmissionRejected,
// остальные ошибки - как ErrTransport.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		Encoding:            opts.Encoding,
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
		MaxRetries:          opts.MaxRetries,
		MinContextSlot:      opts.MinContextSlot,
	})
	if err == nil {
		return sig, nil
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		details := c.analyzer.AnalyzeRPCError(rpcErr)
		c.logger.Warn("Transaction rejected",
			zap.Int("code", details.Code),
			zap.String("message", details.Message),
			zap.Bool("simulation_failed", details.SimulationFailed),
			zap.Strings("logs", details.Logs))
		return solana.Signature{}, blockchain.NewError(blockchain.ErrSubmissionRejected, "send transaction", err)
	}

	c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
	return solana.Signature{}, blockchain.NewError(blockchain.ErrTransport, "send transaction", err)
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err != nil {
		c.logger.Debug("GetSignatureStatuses error", zap.Error(err))
		return nil, blockchain.NewError(blockchain.ErrTransport, "get signature statuses", err)
	}
	return result, nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
