package catalog

// fundTransferEvents are event names that always count as fund movements.
var fundTransferEvents = []string{
	"Transfer", "Withdrawal", "Deposit", "Mint", "Borrow",
	"LogDeposit", "LogWithdraw", "EthPurchase", "TokenPurchase",
	"KyberTrade", "ExecuteTrade", "TradeExecute", "EtherReceival",
}

// fundTransferSubstrings make any event name containing them a fund movement.
var fundTransferSubstrings = []string{"Transfer", "Mint", "Borrow"}

var contractSource = Endpoint{Contract: true, Fallback: FallbackContractOrExternal}

// builtinRules is ordered: the first matching rule wins.
var builtinRules = []Rule{
	{
		Names: []string{"Transfer"},
		Match: MatchContains,
		Source: Endpoint{
			Params:   []string{"from", "src", "source", "sender"},
			FoldCase: true,
			Fallback: FallbackContractOrExternal,
		},
		Destination: Endpoint{
			Params:   []string{"to", "dst", "destination", "receiver", "recipient"},
			FoldCase: true,
			Fallback: FallbackExternal,
		},
		Amount: AmountSpec{
			Params:   []string{"value", "amount", "wad", "tokens", "val"},
			FoldCase: true,
		},
	},
	{
		Names:  []string{"Mint"},
		Match:  MatchContains,
		Source: contractSource,
		Destination: Endpoint{
			Params:   []string{"to", "account", "dst", "user", "minter"},
			ScanHex:  true,
			Fallback: FallbackExternal,
		},
		Amount: AmountSpec{Params: []string{"value", "amount", "wad", "mintAmount", "mintTokens"}},
	},
	{
		Names:       []string{"AccrueInterest"},
		Source:      contractSource,
		Destination: Endpoint{SameAsSource: true},
		Amount: AmountSpec{
			Params:        []string{"interestAccumulated", "borrowIndex", "totalBorrows"},
			FormattedOnly: true,
		},
	},
	{
		Names: []string{"Deposit", "LogDeposit"},
		Source: Endpoint{
			Params:   []string{"src", "from", "user", "sender"},
			Fallback: FallbackExternal,
		},
		Destination: Endpoint{
			Params:   []string{"dst", "to", "reserve"},
			Fallback: FallbackContract,
		},
		Amount: AmountSpec{Params: []string{"amount", "value", "wad"}},
	},
	{
		Names: []string{"Withdrawal", "LogWithdraw"},
		Source: Endpoint{
			Params:   []string{"src", "from", "reserve"},
			Fallback: FallbackContract,
		},
		Destination: Endpoint{
			Params:   []string{"dst", "to", "user", "receiver"},
			Fallback: FallbackExternal,
		},
		Amount: AmountSpec{Params: []string{"amount", "value", "wad"}},
	},
	{
		Names:       []string{"Borrow"},
		Source:      contractSource,
		Destination: Endpoint{Params: []string{"borrower", "account", "user"}},
		Amount:      AmountSpec{Params: []string{"borrowAmount", "amount", "value"}},
	},
	{
		Names:       []string{"TokenPurchase"},
		Source:      contractSource,
		Destination: Endpoint{Params: []string{"buyer", "to", "dst"}},
		Amount:      AmountSpec{Params: []string{"tokens_bought", "amount", "value"}},
	},
	{
		Names:       []string{"EthPurchase"},
		Source:      Endpoint{Params: []string{"buyer", "from", "src"}},
		Destination: contractSource,
		Amount:      AmountSpec{Params: []string{"eth_bought", "amount", "value"}},
	},
	{
		Names:  []string{"TradeExecute", "ExecuteTrade"},
		Source: Endpoint{Params: []string{"sender", "trader", "from", "src"}},
		Destination: Endpoint{
			Params:   []string{"destAddress", "to", "dst"},
			Fallback: FallbackContractOrExternal,
		},
		Amount: AmountSpec{Params: []string{"destAmount", "actualDestAmount", "amount", "value"}},
	},
	{
		Names:       []string{"EtherReceival"},
		Source:      Endpoint{Params: []string{"sender", "from", "src"}},
		Destination: contractSource,
		Amount:      AmountSpec{Params: []string{"amount", "value"}},
	},
}

// GenericAmount is the amount spec of the generic fallback rule.
var GenericAmount = AmountSpec{Params: []string{"amount", "value", "wad"}}

// BuiltinRules returns a copy of the built-in rule table in match order.
func BuiltinRules() []Rule {
	out := make([]Rule, len(builtinRules))
	copy(out, builtinRules)
	return out
}

// FundTransferEvents returns the names that are always fund movements.
func FundTransferEvents() []string {
	return append([]string(nil), fundTransferEvents...)
}

// FundTransferSubstrings returns the name fragments that mark a fund movement.
func FundTransferSubstrings() []string {
	return append([]string(nil), fundTransferSubstrings...)
}
