package models

// NormalizedRecord is the common shape every chain query result is flattened
// into, regardless of which token standard the upstream indexer speaks.
// ERC-721 tokens fill TokenID, ERC-1155 balances fill TokenID and Balance.
type NormalizedRecord struct {
	Owner    string `json:"owner,omitempty"`
	Contract string `json:"contract,omitempty"`
	TokenID  string `json:"tokenId,omitempty"`
	Balance  string `json:"balance,omitempty"`
	Standard string `json:"standard"`
}

// TxReceipt is what the on-chain submission collaborator hands back.
type TxReceipt struct {
	TxHash string `json:"txHash"`
}
