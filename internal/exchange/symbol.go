package exchange

import (
	"fmt"
	"strings"
)

// SplitSymbol splits a BASE/QUOTE symbol.
func SplitSymbol(symbol string) (base, quote string, err error) {
	base, quote, ok := strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", "", fmt.Errorf("exchange: symbol %q is not BASE/QUOTE", symbol)
	}
	return strings.ToUpper(base), strings.ToUpper(quote), nil
}

// VenueSymbol renders a BASE/QUOTE symbol with sep between the assets, e.g.
// "BTCUSDT" for sep "" or "BTC-USDT" for sep "-".
func VenueSymbol(symbol, sep string) (string, error) {
	base, quote, err := SplitSymbol(symbol)
	if err != nil {
		return "", err
	}
	return base + sep + quote, nil
}
