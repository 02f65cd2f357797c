// internal/blockchain/solbc/priorityfee/estimator.go
package priorityfee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
	"go.uber.org/zap"
)

const (
	opEstimate       = "priority fee estimate"
	encodingBase64   = "Base64"
	maxErrorBodySize = 512
)

// Estimator запрашивает у внешнего сервиса рекомендуемую цену compute unit
// (в микролампортах) для набора аккаунтов.
type Estimator struct {
	client   *http.Client
	endpoint string
	level    PriorityLevel
	logger   *zap.Logger
}

// Option настраивает Estimator
type Option func(*Estimator)

// WithPriorityLevel задает уровень приоритета вместо Medium.
func WithPriorityLevel(level PriorityLevel) Option {
	return func(e *Estimator) {
		if level.Valid() {
			e.level = level
		}
	}
}

// NewEstimator создает оценщик. endpoint - тот же URL, что и у RPC ноды.
// Таймауты и отмена полностью определяются переданным http.Client и контекстом.
func NewEstimator(client *http.Client, endpoint string, logger *zap.Logger, opts ...Option) *Estimator {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Estimator{
		client:   client,
		endpoint: endpoint,
		level:    DefaultPriorityLevel,
		logger:   logger.Named("priority-fee"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate возвращает оценку цены compute unit для инструкций, усеченную до целого.
func (e *Estimator) Estimate(ctx context.Context, instructions []solana.Instruction) (uint64, error) {
	body, err := json.Marshal(e.newRequest(instructions))
	if err != nil {
		return 0, fmt.Errorf("marshal priority fee request: %w", err)
	}
	e.logger.Info("priority fee request", zap.ByteString("json", body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, blockchain.NewError(blockchain.ErrTransport, opEstimate, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, blockchain.NewError(blockchain.ErrTransport, opEstimate, err)
	}
	e.logger.Info("priority fee response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > maxErrorBodySize {
			raw = raw[:maxErrorBodySize]
		}
		return 0, blockchain.NewError(blockchain.ErrTransport, opEstimate,
			fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(raw)))
	}

	var response Response
	if err := json.Unmarshal(raw, &response); err != nil {
		return 0, blockchain.NewError(blockchain.ErrDeserialization, opEstimate, err)
	}

	fee, ok := truncate(response.PriorityFeeEstimate)
	if !ok {
		return 0, blockchain.NewError(blockchain.ErrEmptyEstimate, opEstimate, nil)
	}

	e.logger.Info("priority fee", zap.Uint64("micro_lamports", fee))
	return fee, nil
}

func (e *Estimator) newRequest(instructions []solana.Instruction) *Request {
	return &Request{
		Transaction: nil,
		AccountKeys: AccountKeys(instructions),
		Options: &Options{
			PriorityLevel:               e.level,
			IncludeAllPriorityFeeLevels: false,
			TransactionEncoding:         encodingBase64,
			LookbackSlots:               nil,
			Recommended:                 true,
			IncludeVote:                 true,
		},
	}
}

// AccountKeys собирает ключи аккаунтов всех инструкций в исходном порядке, без дедупликации.
func AccountKeys(instructions []solana.Instruction) []string {
	keys := make([]string, 0, len(instructions)*4)
	for _, ix := range instructions {
		for _, meta := range ix.Accounts() {
			keys = append(keys, meta.PublicKey.String())
		}
	}
	return keys
}

// truncate отбрасывает дробную часть. Отсутствующая или отрицательная оценка непригодна.
func truncate(estimate *float64) (uint64, bool) {
	if estimate == nil {
		return 0, false
	}
	v := *estimate
	if math.IsNaN(v) || v < 0 {
		return 0, false
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64, true
	}
	return uint64(v), true
}
