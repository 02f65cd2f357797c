// internal/sender/runner.go
package sender

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-txsend/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain/solbc/priorityfee"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-txsend/internal/config"
	"github.com/rovshanmuradov/solana-txsend/internal/utils/logger"
	"github.com/rovshanmuradov/solana-txsend/internal/wallet"
)

// Result - итог одного перевода
type Result struct {
	Recipient string
	Lamports  uint64
	Signature solana.Signature
	Status    *transaction.Status
	Err       error
}

type Runner struct {
	logger    *logger.Logger
	config    *config.Config
	wallet    *wallet.Wallet
	submitter *transaction.Submitter
	monitor   *transaction.Monitor
}

// NewRunner собирает зависимости. HTTP и RPC клиенты общие для всех переводов.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	client := solbc.NewClient(cfg.RPCURL, cfg.CommitmentType(), log.Logger)
	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond}
	// сервис оценки комиссии живет на том же endpoint, что и RPC
	estimator := priorityfee.NewEstimator(httpClient, client.RPCURL(), log.Logger,
		priorityfee.WithPriorityLevel(cfg.Level()))

	monitorCfg := transaction.DefaultMonitorConfig()
	monitorCfg.Timeout = time.Duration(cfg.ConfirmTimeoutMs) * time.Millisecond

	return &Runner{
		logger:    log,
		config:    cfg,
		wallet:    w,
		submitter: transaction.NewSubmitter(client, estimator, log.Logger),
		monitor:   transaction.NewMonitor(client, log.Logger, monitorCfg),
	}, nil
}

// Run отправляет все переводы из конфигурации параллельно.
// Ошибка одного перевода не отменяет остальные; возвращается объединение ошибок.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(r.config.Transfers))
	var mu sync.Mutex
	var errs []error

	var g errgroup.Group
	for i, t := range r.config.Transfers {
		g.Go(func() error {
			res := r.send(ctx, t)
			results[i] = res
			if res.Err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("transfer to %s: %w", t.Recipient, res.Err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

func (r *Runner) send(ctx context.Context, t config.Transfer) Result {
	res := Result{Recipient: t.Recipient, Lamports: t.Lamports}
	opLogger := r.logger.WithOperation("transfer").With(
		zap.String("recipient", t.Recipient),
		zap.Uint64("lamports", t.Lamports))

	recipient, err := solana.PublicKeyFromBase58(t.Recipient)
	if err != nil {
		res.Err = fmt.Errorf("invalid recipient: %w", err)
		return res
	}

	instructions := []solana.Instruction{
		system.NewTransferInstruction(t.Lamports, r.wallet.Address(), recipient).Build(),
	}

	sig, err := r.submitter.Submit(ctx, instructions, r.wallet, r.config.ComputeUnitLimit, r.config.PriorityFee)
	if err != nil {
		opLogger.Error("Transfer failed", zap.Error(err))
		res.Err = err
		return res
	}
	res.Signature = sig
	opLogger.Info("Transfer submitted", zap.String("signature", sig.String()))

	if !r.config.Confirm {
		return res
	}

	status, err := r.monitor.AwaitConfirmation(ctx, sig)
	res.Status = status
	if err != nil {
		r.logger.WithTransaction(sig.String()).Warn("Transfer not confirmed", zap.Error(err))
		res.Err = err
	}
	return res
}
