package chainquery

import (
	"fmt"

	"ms-nft-ticketing/internal/config"
)

// Resolver maps a (network, standard) pair to the indexer endpoint that
// serves it.
type Resolver struct {
	endpoints map[Network]map[Standard]string
}

func NewResolver(cfg config.ChainConfig) *Resolver {
	endpoints := make(map[Network]map[Standard]string, len(cfg.Endpoints))
	for network, standards := range cfg.Endpoints {
		n, err := ParseNetwork(network)
		if err != nil {
			continue
		}
		for standard, url := range standards {
			s, err := ParseStandard(standard)
			if err != nil || url == "" {
				continue
			}
			if endpoints[n] == nil {
				endpoints[n] = make(map[Standard]string)
			}
			endpoints[n][s] = url
		}
	}
	return &Resolver{endpoints: endpoints}
}

// Resolve returns the endpoint URL for the pair or ErrUnsupportedCombination.
func (r *Resolver) Resolve(network Network, standard Standard) (string, error) {
	url, ok := r.endpoints[network][standard]
	if !ok || url == "" {
		return "", fmt.Errorf("no indexer for %s/%s: %w", network, standard, ErrUnsupportedCombination)
	}
	return url, nil
}
