package model

// LogRecord is a raw receipt log before ABI decoding.
type LogRecord struct {
	Address  string   `json:"address"`
	Topics   []string `json:"topics"`
	Data     string   `json:"data"`
	LogIndex *uint64  `json:"logIndex,omitempty"`
}

// RawTxLogs is the raw receipt log file consumed by the decoder.
type RawTxLogs struct {
	TransactionHash string      `json:"transactionHash,omitempty"`
	Timestamp       uint64      `json:"timestamp,omitempty"`
	Logs            []LogRecord `json:"logs"`
}
