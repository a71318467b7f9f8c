package decoder

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// fundFlowABIJSON covers the fund-movement events the router has rules for:
// ERC20 transfers, WETH wrapping, Compound cTokens, Uniswap V1 exchanges and
// the Kyber network proxy.
const fundFlowABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "from", "type": "address"},
      {"indexed": true, "name": "to", "type": "address"},
      {"indexed": false, "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "dst", "type": "address"},
      {"indexed": false, "name": "wad", "type": "uint256"}
    ],
    "name": "Deposit",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "src", "type": "address"},
      {"indexed": false, "name": "wad", "type": "uint256"}
    ],
    "name": "Withdrawal",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "name": "minter", "type": "address"},
      {"indexed": false, "name": "mintAmount", "type": "uint256"},
      {"indexed": false, "name": "mintTokens", "type": "uint256"}
    ],
    "name": "Mint",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "name": "borrower", "type": "address"},
      {"indexed": false, "name": "borrowAmount", "type": "uint256"},
      {"indexed": false, "name": "accountBorrows", "type": "uint256"},
      {"indexed": false, "name": "totalBorrows", "type": "uint256"}
    ],
    "name": "Borrow",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "name": "cashPrior", "type": "uint256"},
      {"indexed": false, "name": "interestAccumulated", "type": "uint256"},
      {"indexed": false, "name": "borrowIndex", "type": "uint256"},
      {"indexed": false, "name": "totalBorrows", "type": "uint256"}
    ],
    "name": "AccrueInterest",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "buyer", "type": "address"},
      {"indexed": true, "name": "eth_sold", "type": "uint256"},
      {"indexed": true, "name": "tokens_bought", "type": "uint256"}
    ],
    "name": "TokenPurchase",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "buyer", "type": "address"},
      {"indexed": true, "name": "tokens_sold", "type": "uint256"},
      {"indexed": true, "name": "eth_bought", "type": "uint256"}
    ],
    "name": "EthPurchase",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "trader", "type": "address"},
      {"indexed": false, "name": "src", "type": "address"},
      {"indexed": false, "name": "dest", "type": "address"},
      {"indexed": false, "name": "actualSrcAmount", "type": "uint256"},
      {"indexed": false, "name": "actualDestAmount", "type": "uint256"}
    ],
    "name": "ExecuteTrade",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "name": "sender", "type": "address"},
      {"indexed": false, "name": "amount", "type": "uint256"}
    ],
    "name": "EtherReceival",
    "type": "event"
  }
]`

var (
	fundFlowABI     abi.ABI
	fundFlowABIOnce sync.Once
	fundFlowABIErr  error
)

// FundFlowABI returns the parsed built-in event ABI.
func FundFlowABI() (abi.ABI, error) {
	fundFlowABIOnce.Do(func() {
		fundFlowABI, fundFlowABIErr = abi.JSON(strings.NewReader(fundFlowABIJSON))
	})
	return fundFlowABI, fundFlowABIErr
}

// LoadABIFiles parses contract ABI JSON files.
func LoadABIFiles(paths ...string) ([]abi.ABI, error) {
	out := make([]abi.ABI, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open abi: %w", err)
		}
		parsed, err := abi.JSON(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("parse abi %s: %w", path, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}
