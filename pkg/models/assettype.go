package models

import "strings"

// AssetType classifies a symbol and gates which provider set and
// fundamentals variant are used downstream.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
	AssetETF    AssetType = "etf"
	AssetIndex  AssetType = "index"
)

// cryptoSymbols is the curated set of crypto tickers we recognize.
var cryptoSymbols = map[string]struct{}{
	"BTC": {}, "ETH": {}, "BNB": {}, "XRP": {}, "ADA": {}, "SOL": {},
	"DOGE": {}, "DOT": {}, "MATIC": {}, "AVAX": {}, "LINK": {}, "LTC": {},
	"UNI": {}, "ATOM": {}, "XLM": {}, "ALGO": {}, "TRX": {}, "SHIB": {},
	"NEAR": {}, "FTM": {},
}

// etfSymbols is the curated set of exchange-traded funds.
var etfSymbols = map[string]struct{}{
	"SPY": {}, "QQQ": {}, "DIA": {}, "IWM": {}, "VTI": {}, "VOO": {},
	"ARKK": {}, "GLD": {}, "SLV": {}, "XLF": {}, "XLE": {}, "XLK": {},
	"EEM": {}, "TLT": {}, "HYG": {},
}

// DetectAssetType classifies a ticker-like string. Case-insensitive, pure,
// and total: unknown symbols default to stock.
func DetectAssetType(symbol string) AssetType {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasPrefix(s, "^") {
		return AssetIndex
	}
	if _, ok := cryptoSymbols[s]; ok {
		return AssetCrypto
	}
	if _, ok := etfSymbols[s]; ok {
		return AssetETF
	}
	return AssetStock
}
