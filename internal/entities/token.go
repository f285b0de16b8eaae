package entities

import "time"

// TokenMetadata is the display metadata returned by the token-list API.
type TokenMetadata struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	LogoURI string `json:"logoURI"`
}

// TokenInfo is one priced asset held by a wallet. Balance is already
// adjusted for the token's decimals (or lamports for the native entry).
type TokenInfo struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Balance  float64 `json:"balance"`
	PriceUSD float64 `json:"priceUSD"`
	Mint     string  `json:"mint"`
	Address  string  `json:"address"`
	IsFun    bool    `json:"isFun"`
	LogoURI  string  `json:"logoURI"`
}

// Holding is a non-zero SPL token account owned by a wallet, as parsed
// from the ledger's jsonParsed account data.
type Holding struct {
	Mint         string
	Amount       float64
	Decimals     int
	TokenAccount string
}

// PortfolioSnapshot is the last aggregated token list stored for a wallet.
type PortfolioSnapshot struct {
	Address     string      `json:"address"`
	Tokens      []TokenInfo `json:"tokens"`
	RefreshedAt time.Time   `json:"refreshed_at"`
}
