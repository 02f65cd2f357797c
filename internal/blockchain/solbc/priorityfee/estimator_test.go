package priorityfee

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/solana-txsend/internal/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// feeServer поднимает фейковый сервис оценки и запоминает тело последнего запроса
func feeServer(t *testing.T, status int, response string) (*httptest.Server, *[]byte) {
	t.Helper()
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		captured = body
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func instruction(accounts ...solana.PublicKey) solana.Instruction {
	metas := make([]*solana.AccountMeta, 0, len(accounts))
	for _, a := range accounts {
		metas = append(metas, solana.Meta(a).WRITE())
	}
	return solana.NewInstruction(solana.MemoProgramID, metas, []byte("memo"))
}

func TestAccountKeysPreserveOrderAndDuplicates(t *testing.T) {
	x := solana.NewWallet().PublicKey()
	y := solana.NewWallet().PublicKey()

	keys := AccountKeys([]solana.Instruction{instruction(x, y), instruction(y)})

	assert.Equal(t, []string{x.String(), y.String(), y.String()}, keys)
	assert.Empty(t, AccountKeys(nil))
}

func TestEstimateRequestBody(t *testing.T) {
	srv, captured := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 10}`)
	x := solana.NewWallet().PublicKey()
	y := solana.NewWallet().PublicKey()

	est := NewEstimator(srv.Client(), srv.URL, zap.NewNop())
	_, err := est.Estimate(context.Background(), []solana.Instruction{instruction(x, y), instruction(y)})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(*captured, &body))

	assert.Contains(t, body, "transaction")
	assert.Nil(t, body["transaction"])
	assert.Equal(t, []interface{}{x.String(), y.String(), y.String()}, body["accountKeys"])

	options, ok := body["options"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Medium", options["priorityLevel"])
	assert.Equal(t, false, options["includeAllPriorityFeeLevels"])
	assert.Equal(t, "Base64", options["transactionEncoding"])
	assert.Contains(t, options, "lookbackSlots")
	assert.Nil(t, options["lookbackSlots"])
	assert.Equal(t, true, options["recommended"])
	assert.Equal(t, true, options["includeVote"])
}

func TestEstimateEmptyInstructions(t *testing.T) {
	srv, captured := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 1}`)

	fee, err := NewEstimator(srv.Client(), srv.URL, zap.NewNop()).Estimate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fee)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(*captured, &body))
	assert.Equal(t, []interface{}{}, body["accountKeys"])
}

func TestEstimateResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		want     uint64
		wantErr  error
	}{
		{name: "truncates fraction", status: http.StatusOK, response: `{"priorityFeeEstimate": 1234.9}`, want: 1234},
		{name: "whole number", status: http.StatusOK, response: `{"priorityFeeEstimate": 5000.0}`, want: 5000},
		{name: "zero is a valid estimate", status: http.StatusOK, response: `{"priorityFeeEstimate": 0}`, want: 0},
		{name: "null estimate", status: http.StatusOK, response: `{"priorityFeeEstimate": null}`, wantErr: blockchain.ErrEmptyEstimate},
		{name: "absent estimate", status: http.StatusOK, response: `{}`, wantErr: blockchain.ErrEmptyEstimate},
		{name: "negative estimate", status: http.StatusOK, response: `{"priorityFeeEstimate": -3}`, wantErr: blockchain.ErrEmptyEstimate},
		{name: "malformed body", status: http.StatusOK, response: `{"priorityFeeEstimate": `, wantErr: blockchain.ErrDeserialization},
		{name: "wrong type", status: http.StatusOK, response: `{"priorityFeeEstimate": "fast"}`, wantErr: blockchain.ErrDeserialization},
		{name: "server error", status: http.StatusInternalServerError, response: `oops`, wantErr: blockchain.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := feeServer(t, tt.status, tt.response)
			est := NewEstimator(srv.Client(), srv.URL, zap.NewNop())

			fee, err := est.Estimate(context.Background(), []solana.Instruction{instruction(solana.NewWallet().PublicKey())})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, fee)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fee)
		})
	}
}

func TestEstimateErrorsAreDistinguishable(t *testing.T) {
	srv, _ := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": null}`)

	_, err := NewEstimator(srv.Client(), srv.URL, zap.NewNop()).Estimate(context.Background(), nil)

	assert.ErrorIs(t, err, blockchain.ErrEmptyEstimate)
	assert.NotErrorIs(t, err, blockchain.ErrTransport)
	assert.NotErrorIs(t, err, blockchain.ErrDeserialization)
}

func TestEstimateTransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewEstimator(http.DefaultClient, url, zap.NewNop()).Estimate(context.Background(), nil)
		assert.ErrorIs(t, err, blockchain.ErrTransport)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := &http.Client{Timeout: 50 * time.Millisecond}
		_, err := NewEstimator(client, srv.URL, zap.NewNop()).Estimate(context.Background(), nil)
		assert.ErrorIs(t, err, blockchain.ErrTransport)
	})

	t.Run("context cancelled", func(t *testing.T) {
		srv, _ := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 1}`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewEstimator(srv.Client(), srv.URL, zap.NewNop()).Estimate(ctx, nil)
		assert.ErrorIs(t, err, blockchain.ErrTransport)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEstimateLogsRequestAndResponse(t *testing.T) {
	srv, _ := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 42.5}`)
	core, logs := observer.New(zap.InfoLevel)

	_, err := NewEstimator(srv.Client(), srv.URL, zap.New(core)).Estimate(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("priority fee request").Len())
	assert.Equal(t, 1, logs.FilterMessage("priority fee response").Len())
}

func TestWithPriorityLevel(t *testing.T) {
	srv, captured := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 1}`)

	est := NewEstimator(srv.Client(), srv.URL, zap.NewNop(), WithPriorityLevel(PriorityHigh))
	_, err := est.Estimate(context.Background(), nil)
	require.NoError(t, err)

	var req Request
	require.NoError(t, json.Unmarshal(*captured, &req))
	assert.Equal(t, PriorityHigh, req.Options.PriorityLevel)

	// неизвестный уровень игнорируется
	est = NewEstimator(srv.Client(), srv.URL, zap.NewNop(), WithPriorityLevel("Turbo"))
	assert.Equal(t, PriorityMedium, est.level)
}

func TestParsePriorityLevel(t *testing.T) {
	level, err := ParsePriorityLevel("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, level)

	level, err = ParsePriorityLevel("veryhigh")
	require.NoError(t, err)
	assert.Equal(t, PriorityVeryHigh, level)

	level, err = ParsePriorityLevel(" UnsafeMax ")
	require.NoError(t, err)
	assert.Equal(t, PriorityUnsafeMax, level)

	_, err = ParsePriorityLevel("default")
	assert.Error(t, err)
}

func TestEstimateTransferInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	srv, captured := feeServer(t, http.StatusOK, `{"priorityFeeEstimate": 5000.0}`)

	transfer := system.NewTransferInstruction(1_000, payer, recipient).Build()
	fee, err := NewEstimator(srv.Client(), srv.URL, zap.NewNop()).Estimate(context.Background(), []solana.Instruction{transfer})
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), fee)

	var req Request
	require.NoError(t, json.Unmarshal(*captured, &req))
	assert.Equal(t, []string{payer.String(), recipient.String()}, req.AccountKeys)
}
