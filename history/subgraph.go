package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/swapflow/trades"
)

const positionSwapsQuery = `
	query PositionSwaps($position: String!, $first: Int!, $skip: Int!) {
		swaps(
			first: $first
			skip: $skip
			orderBy: transactionTimestamp
			orderDirection: asc
			where: { position: $position }
		) {
			id
			transactionTimestamp
			variableTokenDelta
			fixedTokenDeltaUnbalanced
		}
	}
`

// Subgraph is a GraphQL client for the pool's indexer. Amounts come back as
// integer base units, scaled by Decimals.
type Subgraph struct {
	url        string
	apiKey     string
	decimals   int32
	pageSize   int
	httpClient *http.Client
	log        zerolog.Logger
}

// NewSubgraph creates a client for the GraphQL endpoint at url.
func NewSubgraph(url, apiKey string, decimals int32, log zerolog.Logger) *Subgraph {
	return &Subgraph{
		url:      url,
		apiKey:   strings.TrimSpace(apiKey),
		decimals: decimals,
		pageSize: 1000,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Trades pages through every swap of the position.
func (s *Subgraph) Trades(ctx context.Context, positionID string) ([]trades.RawTrade, error) {
	var out []trades.RawTrade
	for skip := 0; ; skip += s.pageSize {
		page, err := s.fetchPage(ctx, positionID, skip)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		s.log.Debug().Str("position", positionID).Int("skip", skip).Int("rows", len(page)).Msg("subgraph page")
		if len(page) < s.pageSize {
			return out, nil
		}
	}
}

func (s *Subgraph) fetchPage(ctx context.Context, positionID string, skip int) ([]trades.RawTrade, error) {
	data, err := s.doQuery(ctx, positionSwapsQuery, map[string]any{
		"position": strings.ToLower(positionID),
		"first":    s.pageSize,
		"skip":     skip,
	})
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch swaps: %w", err)
	}

	var result struct {
		Swaps []struct {
			ID                        string `json:"id"`
			TransactionTimestamp      string `json:"transactionTimestamp"`
			VariableTokenDelta        string `json:"variableTokenDelta"`
			FixedTokenDeltaUnbalanced string `json:"fixedTokenDeltaUnbalanced"`
		} `json:"swaps"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode swaps: %w", err)
	}

	page := make([]trades.RawTrade, 0, len(result.Swaps))
	for _, e := range result.Swaps {
		page = append(page, trades.RawTrade{
			ID:                        e.ID,
			PositionID:                positionID,
			Kind:                      trades.KindSwap,
			Timestamp:                 e.TransactionTimestamp,
			VariableTokenDelta:        e.VariableTokenDelta,
			FixedTokenDeltaUnbalanced: e.FixedTokenDeltaUnbalanced,
			Decimals:                  s.decimals,
		})
	}
	return page, nil
}

func (s *Subgraph) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}
	return gqlResp.Data, nil
}
