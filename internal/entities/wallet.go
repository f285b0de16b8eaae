package entities

import (
	"time"
)

// Wallet represents a tracked wallet in our system. Only the public
// address and a user-facing label are persisted; key material is handed
// back to the caller once at creation/import time and never stored.
type Wallet struct {
	ID        int       `db:"id"        json:"id"`
	Address   string    `db:"address"   json:"address"`
	Label     string    `db:"label"     json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WalletSecrets carries the one-time key material for a freshly generated
// or imported wallet.
type WalletSecrets struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}
