package models

// TransferResult pairs the post-transfer snapshots of both accounts
type TransferResult struct {
	Sender    *Account `json:"sender"`
	Recipient *Account `json:"recipient"`
}
