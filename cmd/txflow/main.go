package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "txflow",
		Short:        "Transaction value-flow graph builder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build value-flow graphs from decoded transaction events",
		RunE:  runBuild,
	}

	buildCmd.Flags().String("in", "", "decoded transaction JSON file or directory of files")
	buildCmd.Flags().String("out", "./data/graphs", "graph output directory")
	buildCmd.Flags().StringSlice("catalog", nil, "event catalog files, YAML or JSON (comma-separated)")
	buildCmd.Flags().String("flows-out", "", "optional JSONL path for extracted flow tuples")
	buildCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for graph persistence")
	buildCmd.Flags().Int("concurrency", 4, "files processed in parallel")
	buildCmd.Flags().Bool("keep-zero-address", false, "keep the zero address in the graph")
	buildCmd.Flags().Bool("debug", false, "log per-event decisions")
	buildCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(buildCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode transaction receipt logs into event JSON",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	decodeCmd.Flags().String("tx", "", "transaction hash to fetch")
	decodeCmd.Flags().String("in", "", "raw receipt logs JSON, instead of --tx")
	decodeCmd.Flags().StringSlice("abi", nil, "extra contract ABI files (comma-separated)")
	decodeCmd.Flags().String("out", "./data/decoded", "decoded document output directory")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	decodeCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	decodeCmd.Flags().Bool("debug", false, "log per-log decisions")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
