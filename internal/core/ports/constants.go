package ports

const (
	// NativeMint is the sentinel identifier used for the native SOL entry.
	NativeMint = "SOL"

	// WrappedSOLMint is the canonical wrapped-SOL address the price API
	// understands; NativeMint is mapped to it before price lookups.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"

	// LamportsPerSOL converts a raw ledger balance to display units.
	LamportsPerSOL = 1e9

	// PumpSuffix marks mints from the pump.fun token family.
	PumpSuffix = "pump"

	NativeTokenName   = "Solana"
	NativeTokenSymbol = "SOL"

	NativeLogoURL       = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png"
	UnknownTokenLogoURL = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/unknown-token.png"
	PumpLogoURL         = "https://pump.fun/logo.png"
)
