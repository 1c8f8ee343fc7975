package chainquery_api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-nft-ticketing/internal/chainquery"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/utils"
)

type Handler struct {
	Aggregator *chainquery.Aggregator
	Logger     *logger.Logger
}

func NewHandler(aggregator *chainquery.Aggregator, log *logger.Logger) *Handler {
	return &Handler{Aggregator: aggregator, Logger: log}
}

// QueryChainData handles GET /chain/query.
// Query params: network, type, first, skip, owner, contract.
func (h *Handler) QueryChainData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	network, err := chainquery.ParseNetwork(q.Get("network"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unsupported network", err)
		return
	}

	standard, err := chainquery.ParseStandard(q.Get("type"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unsupported token standard", err)
		return
	}

	params, err := chainquery.ParseQueryParams(q.Get("first"), q.Get("skip"), q.Get("owner"), q.Get("contract"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid pagination", err)
		return
	}

	records, err := h.Aggregator.Execute(r.Context(), network, standard, params)
	if err != nil {
		switch {
		case errors.Is(err, chainquery.ErrUnsupportedCombination):
			h.writeError(w, http.StatusBadRequest, "unsupported network and token standard combination", err)
		case errors.Is(err, chainquery.ErrMalformedUpstreamResponse):
			h.Logger.Error("CHAIN", fmt.Sprintf("Malformed indexer response: %v", err))
			h.writeError(w, http.StatusBadGateway, "chain query failed", err)
		default:
			h.Logger.Error("CHAIN", fmt.Sprintf("Chain query failed: %v", err))
			h.writeError(w, http.StatusBadGateway, "chain query failed", err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("success", map[string]interface{}{
		"data": records,
	}))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	utils.WriteError(w, status, message, err.Error())
}
