// ====================================
// File: cmd/txsend/main.go
// ====================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-txsend/internal/config"
	"github.com/rovshanmuradov/solana-txsend/internal/sender"
	"github.com/rovshanmuradov/solana-txsend/internal/utils/logger"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagConfig  string
		flagConfirm bool
		flagNoFee   bool
	)

	pflag.StringVarP(&flagConfig, "config", "c", "configs/config.json", "path to configuration file")
	pflag.BoolVar(&flagConfirm, "confirm", false, "wait for confirmation after submission")
	pflag.BoolVar(&flagNoFee, "no-priority-fee", false, "submit without priority fee estimation")
	pflag.Parse()

	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		// логгер еще не настроен
		bootstrap, _ := zap.NewDevelopment()
		bootstrap.Error("Failed to load config", zap.String("path", flagConfig), zap.Error(err))
		return failure
	}
	if flagConfirm {
		cfg.Confirm = true
	}
	if flagNoFee {
		cfg.PriorityFee = false
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return failure
	}
	defer log.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner, err := sender.NewRunner(cfg, log)
	if err != nil {
		log.Error("Failed to initialize sender", zap.Error(err))
		return failure
	}

	results, err := runner.Run(ctx)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		log.Info("Transfer done",
			zap.String("recipient", res.Recipient),
			zap.Uint64("lamports", res.Lamports),
			zap.String("signature", res.Signature.String()))
	}
	if err != nil {
		log.Error("Some transfers failed", zap.Error(err))
		return failure
	}

	return success
}
