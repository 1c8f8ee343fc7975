package chainquery

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCount is used when the caller does not supply a page size.
const DefaultCount = 1000

// QueryParams carries pagination and optional filters for a chain query.
// Empty Owner/Contract mean "no filter on that field".
type QueryParams struct {
	Count    int
	Offset   int
	Owner    string
	Contract string
}

// ParseQueryParams builds QueryParams from raw query-string values. Absent
// values take the defaults (count 1000, offset 0); negative or non-numeric
// values fail with ErrInvalidPagination.
func ParseQueryParams(first, skip, owner, contract string) (QueryParams, error) {
	params := QueryParams{Count: DefaultCount, Offset: 0, Owner: owner, Contract: contract}

	if first != "" {
		n, err := strconv.Atoi(first)
		if err != nil || n < 0 {
			return QueryParams{}, fmt.Errorf("invalid first value %q: %w", first, ErrInvalidPagination)
		}
		params.Count = n
	}
	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return QueryParams{}, fmt.Errorf("invalid skip value %q: %w", skip, ErrInvalidPagination)
		}
		params.Offset = n
	}
	return params, nil
}

// BuildQuery produces the GraphQL query for a token standard. ERC-1155
// queries the balances collection, ERC-721 the tokens collection.
func BuildQuery(standard Standard, params QueryParams) (string, error) {
	if params.Count < 0 || params.Offset < 0 {
		return "", ErrInvalidPagination
	}

	switch standard {
	case StandardERC1155:
		where := buildWhere("account", params.Owner, "token", params.Contract)
		return fmt.Sprintf(
			"{ balances(first: %d, skip: %d%s) { id value account { id } token { id } } }",
			params.Count, params.Offset, where), nil
	case StandardERC721:
		where := buildWhere("owner", params.Owner, "contract", params.Contract)
		return fmt.Sprintf(
			"{ tokens(first: %d, skip: %d%s) { id owner { id } contract { id } } }",
			params.Count, params.Offset, where), nil
	}
	return "", fmt.Errorf("no query template for standard %q: %w", standard, ErrUnsupportedCombination)
}

func buildWhere(ownerField, owner, contractField, contract string) string {
	var filters []string
	if owner != "" {
		filters = append(filters, fmt.Sprintf("%s: %q", ownerField, owner))
	}
	if contract != "" {
		filters = append(filters, fmt.Sprintf("%s: %q", contractField, contract))
	}
	if len(filters) == 0 {
		return ""
	}
	return fmt.Sprintf(", where: {%s}", strings.Join(filters, ", "))
}
