package collector

import (
	"strings"

	"SignalSentinel/internal/model"
)

// stablecoins quoted as USD on sources without stablecoin pairs.
var stablecoins = map[string]bool{
	"USDT":  true,
	"USDC":  true,
	"BUSD":  true,
	"FDUSD": true,
}

// BinanceSymbol converts "BTC/USDT" into "BTCUSDT".
func BinanceSymbol(asset model.Asset) string {
	return strings.ToUpper(strings.ReplaceAll(asset.Symbol, "/", ""))
}

// YahooSymbol converts "BTC/USDT" into "BTC-USD" unless the asset carries an
// explicit fallback symbol.
func YahooSymbol(asset model.Asset) string {
	if asset.FallbackSymbol != "" {
		return asset.FallbackSymbol
	}
	base, quote, ok := strings.Cut(strings.ToUpper(asset.Symbol), "/")
	if !ok {
		return asset.Symbol
	}
	if stablecoins[quote] {
		quote = "USD"
	}
	return base + "-" + quote
}
