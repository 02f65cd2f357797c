// internal/blockchain/solbc/transaction/mocks_test.go
package transaction

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
	"github.com/rovshanmuradov/solana-txsend/internal/wallet"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var computeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// MockClient реализует интерфейс blockchain.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	args := m.Called(ctx, commitment)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockClient) Commitment() rpc.CommitmentType {
	return m.Called().Get(0).(rpc.CommitmentType)
}

func (m *MockClient) RPCURL() string {
	return m.Called().String(0)
}

// MockEstimator реализует интерфейс FeeEstimator
type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Estimate(ctx context.Context, instructions []solana.Instruction) (uint64, error) {
	args := m.Called(ctx, instructions)
	return args.Get(0).(uint64), args.Error(1)
}

// MockStatusClient реализует интерфейс StatusClient
type MockStatusClient struct {
	mock.Mock
}

func (m *MockStatusClient) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, signatures)
	result, _ := args.Get(0).(*rpc.GetSignatureStatusesResult)
	return result, args.Error(1)
}

// MockedWallet создает тестовый кошелек
func MockedWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

// decodedInstruction - программа и данные инструкции в удобном для проверок виде
type decodedInstruction struct {
	program solana.PublicKey
	data    []byte
}

func decodeInstructions(t *testing.T, ixs []solana.Instruction) []decodedInstruction {
	t.Helper()
	out := make([]decodedInstruction, 0, len(ixs))
	for _, ix := range ixs {
		data, err := ix.Data()
		require.NoError(t, err)
		out = append(out, decodedInstruction{program: ix.ProgramID(), data: data})
	}
	return out
}

func decodeCompiled(t *testing.T, tx *solana.Transaction) []decodedInstruction {
	t.Helper()
	out := make([]decodedInstruction, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		require.Less(t, int(ix.ProgramIDIndex), len(tx.Message.AccountKeys))
		program := tx.Message.AccountKeys[ix.ProgramIDIndex]
		out = append(out, decodedInstruction{program: program, data: ix.Data})
	}
	return out
}

func (d decodedInstruction) isComputeUnitLimit() (uint32, bool) {
	if !d.program.Equals(computeBudgetProgramID) || len(d.data) != 5 || d.data[0] != 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(d.data[1:]), true
}

func (d decodedInstruction) isComputeUnitPrice() (uint64, bool) {
	if !d.program.Equals(computeBudgetProgramID) || len(d.data) != 9 || d.data[0] != 3 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(d.data[1:]), true
}
