package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"txflow/internal/chain"
	"txflow/internal/config"
	"txflow/internal/decoder"
	"txflow/internal/model"
	"txflow/internal/pipeline"
	"txflow/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if (cfg.TxHash == "") == (cfg.In == "") {
		return fmt.Errorf("exactly one of --tx or --in is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output dir is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var raw model.RawTxLogs
	var name string
	if cfg.TxHash != "" {
		if cfg.RPCURL == "" {
			return fmt.Errorf("rpc url is required")
		}
		raw, err = fetchReceiptLogs(ctx, cfg, logger)
		if err != nil {
			return err
		}
		name = raw.TransactionHash
	} else {
		raw, err = readRawLogs(cfg.In)
		if err != nil {
			return err
		}
		name = pipeline.DocumentName(cfg.In)
	}

	extra, err := decoder.LoadABIFiles(cfg.ABIFiles...)
	if err != nil {
		return err
	}
	dec, err := decoder.NewDecoder(extra, logger)
	if err != nil {
		return err
	}

	logger.Info("decode start",
		zap.String("tx", raw.TransactionHash),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("abi_files", len(extra)),
		zap.Int("logs", len(raw.Logs)),
	)

	doc, failures := dec.DecodeAll(raw)
	if cfg.Errors != "" {
		if err := storage.NewJsonlStorage(cfg.Errors).PutDecodeErrors(failures); err != nil {
			return err
		}
	}

	outPath := filepath.Join(cfg.Out, name+".json")
	if err := writeDocument(outPath, doc); err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", len(raw.Logs)),
		zap.Int("decoded", len(doc.Events)),
		zap.Int("failed", len(failures)),
		zap.String("file", outPath),
	)
	return nil
}

func fetchReceiptLogs(ctx context.Context, cfg config.DecodeConfig, logger *zap.Logger) (model.RawTxLogs, error) {
	txHash, err := chain.ParseTxHash(cfg.TxHash)
	if err != nil {
		return model.RawTxLogs{}, err
	}

	retry := chain.RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff}
	chainClient, err := chain.Dial(ctx, cfg.RPCURL, retry, logger)
	if err != nil {
		return model.RawTxLogs{}, err
	}
	defer chainClient.Close()

	tx, err := chainClient.FetchReceipt(ctx, txHash)
	if err != nil {
		return model.RawTxLogs{}, err
	}
	return model.RawTxLogs{
		TransactionHash: tx.Hash.Hex(),
		Timestamp:       tx.Timestamp,
		Logs:            decoder.RecordsFromReceipt(tx.Receipt),
	}, nil
}

// readRawLogs accepts either a {transactionHash, timestamp, logs} object or a
// bare array of logs.
func readRawLogs(path string) (model.RawTxLogs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawTxLogs{}, fmt.Errorf("read input: %w", err)
	}

	var raw model.RawTxLogs
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw.Logs); err != nil {
			return model.RawTxLogs{}, fmt.Errorf("parse input: %w", err)
		}
		return raw, nil
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return model.RawTxLogs{}, fmt.Errorf("parse input: %w", err)
	}
	return raw, nil
}

func writeDocument(path string, doc model.TxDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write document tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}
