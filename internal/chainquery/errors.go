package chainquery

import "errors"

var (
	// ErrUnsupportedCombination is returned when no indexer endpoint is
	// configured for a (network, standard) pair. Resolution fails closed:
	// an unknown pair never produces an empty URL.
	ErrUnsupportedCombination = errors.New("unsupported network and token standard combination")

	// ErrInvalidPagination is returned for negative or non-numeric
	// count/offset values.
	ErrInvalidPagination = errors.New("pagination values must be non-negative integers")

	// ErrMalformedUpstreamResponse is returned when the indexer response is
	// missing the collection expected for the queried standard. A missing
	// field is never treated as an empty result.
	ErrMalformedUpstreamResponse = errors.New("unexpected response shape from chain indexer")
)
