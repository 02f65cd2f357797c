package solbc

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// RejectionDetails describes why a node refused a transaction
type RejectionDetails struct {
	Code             int
	Message          string
	SimulationFailed bool
	Logs             []string
	InstructionError interface{}
	Anchor           *AnchorError
}

// ErrorAnalyzer extracts preflight details from JSON-RPC errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// AnalyzeRPCError extracts simulation logs and Anchor errors from a rejection
func (ea *ErrorAnalyzer) AnalyzeRPCError(rpcErr *jsonrpc.RPCError) RejectionDetails {
	if rpcErr == nil {
		return RejectionDetails{}
	}

	details := RejectionDetails{
		Code:             rpcErr.Code,
		Message:          rpcErr.Message,
		SimulationFailed: strings.Contains(rpcErr.Message, "Transaction simulation failed"),
	}

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return details
	}

	if logs, ok := dataMap["logs"].([]interface{}); ok {
		for _, entry := range logs {
			logStr, ok := entry.(string)
			if !ok {
				continue
			}
			details.Logs = append(details.Logs, logStr)

			if details.Anchor == nil && strings.Contains(logStr, "AnchorError occurred") {
				anchorErr := parseAnchorErrorLog(logStr)
				details.Anchor = &anchorErr

				ea.logger.Warn("Anchor error detected",
					zap.Int("code", anchorErr.Code),
					zap.String("name", anchorErr.Name),
					zap.String("message", anchorErr.Msg))
			}
		}
	}

	if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
		details.InstructionError = instrErr
	}

	return details
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if value, ok := fieldAfter(logStr, "Error Number:"); ok {
		fmt.Sscanf(value, "%d", &result.Code)
	}
	if value, ok := fieldAfter(logStr, "Error Code:"); ok {
		result.Name = value
	}
	if value, ok := fieldAfter(logStr, "Error Message:"); ok {
		result.Msg = value
	}

	return result
}

// fieldAfter returns the text between label and the next period
func fieldAfter(s, label string) (string, bool) {
	_, rest, found := strings.Cut(s, label)
	if !found {
		return "", false
	}
	value, _, _ := strings.Cut(rest, ".")
	return strings.TrimSpace(value), true
}
