package decoder

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"txflow/internal/model"
)

// Decoder turns raw receipt logs into named events keyed by topic0.
type Decoder struct {
	events map[common.Hash]abi.Event
	logger *zap.Logger
}

// NewDecoder builds a decoder from the built-in ABI plus extra contract ABIs.
// Later ABIs replace earlier definitions of the same event signature.
func NewDecoder(extra []abi.ABI, logger *zap.Logger) (*Decoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	builtin, err := FundFlowABI()
	if err != nil {
		return nil, fmt.Errorf("parse built-in abi: %w", err)
	}

	d := &Decoder{
		events: make(map[common.Hash]abi.Event),
		logger: logger,
	}
	for _, parsed := range append([]abi.ABI{builtin}, extra...) {
		for _, event := range parsed.Events {
			if event.Anonymous {
				continue
			}
			if _, ok := d.events[event.ID]; ok {
				logger.Debug("abi event replaced", zap.String("event", event.Sig))
			}
			d.events[event.ID] = event
		}
	}
	return d, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	hash, err := parseTopic(topic0)
	if err != nil {
		return false
	}
	_, ok := d.events[hash]
	return ok
}

// Decode converts one log into an event. position is the log's place in the
// receipt, used as eventIndex when the log carries no index of its own.
func (d *Decoder) Decode(log model.LogRecord, position int) (model.Event, error) {
	if len(log.Topics) == 0 {
		return model.Event{}, fmt.Errorf("missing topics")
	}
	topic0, err := parseTopic(log.Topics[0])
	if err != nil {
		return model.Event{}, err
	}
	event, ok := d.events[topic0]
	if !ok {
		return model.Event{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}

	args := namedArguments(event.Inputs)
	indexedTopics, err := parseIndexedTopics(args, log.Topics)
	if err != nil {
		return model.Event{}, fmt.Errorf("%s: %w", event.Name, err)
	}
	indexed := make(map[string]interface{})
	if err := abi.ParseTopicsIntoMap(indexed, indexedArguments(args), indexedTopics); err != nil {
		return model.Event{}, fmt.Errorf("parse %s topics: %w", event.Name, err)
	}
	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.Event{}, err
	}

	inputs := make([]model.InputArgument, 0, len(args))
	next := 0
	for _, arg := range args {
		var value interface{}
		if arg.Indexed {
			value = indexed[arg.Name]
		} else {
			if next >= len(values) {
				return model.Event{}, fmt.Errorf("%s: missing value for %s", event.Name, arg.Name)
			}
			value = values[next]
			next++
		}
		inputs = append(inputs, model.InputArgument{
			Name:     arg.Name,
			Type:     arg.Type.String(),
			RawValue: model.Value(formatValue(value)),
		})
	}

	index := position
	if log.LogIndex != nil {
		index = int(*log.LogIndex)
	}
	return model.Event{
		Name:       event.RawName,
		Address:    log.Address,
		EventIndex: &index,
		Inputs:     inputs,
	}, nil
}

// DecodeAll decodes every log of a receipt. Logs that fail to decode are
// reported and left out of the document.
func (d *Decoder) DecodeAll(raw model.RawTxLogs) (model.TxDocument, []model.DecodeError) {
	doc := model.TxDocument{
		TransactionHash: raw.TransactionHash,
		Events:          make([]model.Event, 0, len(raw.Logs)),
	}
	if raw.Timestamp > 0 {
		doc.Timestamp = model.Value(strconv.FormatUint(raw.Timestamp, 10))
	}

	var failures []model.DecodeError
	for i, log := range raw.Logs {
		event, err := d.Decode(log, i)
		if err != nil {
			failure := model.DecodeError{
				TxHash:   raw.TransactionHash,
				LogIndex: i,
				Address:  log.Address,
				Error:    err.Error(),
			}
			if log.LogIndex != nil {
				failure.LogIndex = int(*log.LogIndex)
			}
			if len(log.Topics) > 0 {
				failure.Topic0 = log.Topics[0]
			}
			failures = append(failures, failure)
			d.logger.Debug("log not decoded",
				zap.Int("log_index", failure.LogIndex),
				zap.String("topic0", failure.Topic0),
				zap.Error(err),
			)
			continue
		}
		doc.Events = append(doc.Events, event)
	}
	return doc, failures
}

// RecordsFromReceipt converts receipt logs into raw log records.
func RecordsFromReceipt(receipt *types.Receipt) []model.LogRecord {
	if receipt == nil {
		return nil
	}
	out := make([]model.LogRecord, 0, len(receipt.Logs))
	for _, lg := range receipt.Logs {
		if lg == nil {
			continue
		}
		topics := make([]string, 0, len(lg.Topics))
		for _, topic := range lg.Topics {
			topics = append(topics, topic.Hex())
		}
		index := uint64(lg.Index)
		out = append(out, model.LogRecord{
			Address:  lg.Address.Hex(),
			Topics:   topics,
			Data:     hexutil.Encode(lg.Data),
			LogIndex: &index,
		})
	}
	return out
}

// namedArguments gives unnamed arguments positional names so that indexed
// values can be looked up by name.
func namedArguments(args abi.Arguments) abi.Arguments {
	out := make(abi.Arguments, len(args))
	copy(out, args)
	for i := range out {
		if out[i].Name == "" {
			out[i].Name = fmt.Sprintf("arg%d", i)
		}
	}
	return out
}

func parseTopic(topic string) (common.Hash, error) {
	data, err := hexutil.Decode(topic)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid topic: %w", err)
	}
	if len(data) > 32 {
		return common.Hash{}, fmt.Errorf("topic length %d", len(data))
	}
	return common.BytesToHash(data), nil
}

func parseIndexedTopics(args abi.Arguments, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(args))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		hash, err := parseTopic(topic)
		if err != nil {
			return nil, err
		}
		out = append(out, hash)
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	if dataHex == "" {
		dataHex = "0x"
	}
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

// formatValue renders a decoded ABI value the way it appears in rawValue.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case *big.Int:
		if v == nil {
			return "0"
		}
		return v.String()
	case []byte:
		return hexutil.Encode(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return hexutil.Encode(buf)
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
