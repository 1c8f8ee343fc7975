package chainquery

import "fmt"

// Network is a supported blockchain network. Anything outside the enumerated
// set is rejected at the boundary by ParseNetwork.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkRinkeby Network = "rinkeby"
)

// Standard is a supported token standard.
type Standard string

const (
	StandardERC721  Standard = "erc721"
	StandardERC1155 Standard = "erc1155"
)

func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMainnet, NetworkRinkeby:
		return Network(s), nil
	}
	return "", fmt.Errorf("unknown network %q: %w", s, ErrUnsupportedCombination)
}

func ParseStandard(s string) (Standard, error) {
	switch Standard(s) {
	case StandardERC721, StandardERC1155:
		return Standard(s), nil
	}
	return "", fmt.Errorf("unknown token standard %q: %w", s, ErrUnsupportedCombination)
}

func (n Network) String() string  { return string(n) }
func (s Standard) String() string { return string(s) }
