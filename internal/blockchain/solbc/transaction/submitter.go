// internal/blockchain/solbc/transaction/submitter.go
package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
	"go.uber.org/zap"
)

// Submitter собирает, подписывает и отправляет транзакции с инструкциями compute budget.
// Состояния между вызовами нет: один Submitter можно вызывать из нескольких горутин.
type Submitter struct {
	client    blockchain.Client
	estimator FeeEstimator
	logger    *zap.Logger
}

// NewSubmitter создает Submitter. estimator может быть nil, если priority fee не используется.
func NewSubmitter(client blockchain.Client, estimator FeeEstimator, logger *zap.Logger) *Submitter {
	return &Submitter{
		client:    client,
		estimator: estimator,
		logger:    logger.Named("tx-submitter"),
	}
}

// BuildInstructions возвращает новый срез: SetComputeUnitLimit, затем (если usePriorityFee)
// SetComputeUnitPrice по оценке сервиса, затем инструкции вызывающего в исходном порядке.
//
// Срез instructions передается во владение: вызывающий не должен использовать его после вызова.
func (s *Submitter) BuildInstructions(
	ctx context.Context,
	instructions []solana.Instruction,
	computeUnitLimit uint32,
	usePriorityFee bool,
) ([]solana.Instruction, error) {
	final := make([]solana.Instruction, 0, len(instructions)+2)
	final = append(final, computebudget.NewSetComputeUnitLimitInstruction(computeUnitLimit).Build())

	if usePriorityFee {
		if s.estimator == nil {
			return nil, ErrNoEstimator
		}
		// Оценка по исходным инструкциям: compute budget инструкции не ссылаются на аккаунты.
		fee, err := s.estimator.Estimate(ctx, instructions)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate priority fee: %w", err)
		}
		final = append(final, computebudget.NewSetComputeUnitPriceInstruction(fee).Build())
	}

	return append(final, instructions...), nil
}

// Submit строит, подписывает и отправляет транзакцию, возвращая подпись.
// Ждет только принятия нодой, не подтверждения. Повторов нет: любая ошибка возвращается сразу.
func (s *Submitter) Submit(
	ctx context.Context,
	instructions []solana.Instruction,
	signer Signer,
	computeUnitLimit uint32,
	usePriorityFee bool,
) (solana.Signature, error) {
	payer := signer.Address()
	logger := s.logger.With(zap.String("payer", payer.String()))

	final, err := s.BuildInstructions(ctx, instructions, computeUnitLimit, usePriorityFee)
	if err != nil {
		logger.Error("Failed to build instructions", zap.Error(err))
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(final, solana.Hash{}, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	// blockhash запрашивается после финализации инструкций, непосредственно перед подписью
	blockhash, err := s.client.GetLatestBlockhash(ctx, s.client.Commitment())
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = blockhash

	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, SendOptions())
	if err != nil {
		logger.Error("Failed to send transaction", zap.Error(err))
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	logger.Info("Transaction sent",
		zap.String("signature", sig.String()),
		zap.Int("instructions", len(final)),
		zap.Uint32("compute_unit_limit", computeUnitLimit),
		zap.Bool("priority_fee", usePriorityFee))
	return sig, nil
}
