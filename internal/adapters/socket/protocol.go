// Package socket implements the JSON query protocol over TCP or Unix
// sockets. Requests are framed by brace balance — the server consumes one
// complete top-level {...} at a time, tracking string and escape state so
// braces inside string literals are ignored. Responses are one JSON object
// plus \n.
package socket

import (
	"strings"

	"github.com/corey/patmatch/internal/domain/trie"
)

// Request is the wire format for client-to-server messages. Exactly one of
// Query or Queries is expected; unknown fields are ignored.
type Request struct {
	ID      string   `json:"id"`
	Query   string   `json:"query,omitempty"`
	Queries []string `json:"queries,omitempty"`
}

// MatchOutput is a single match in a response.
type MatchOutput struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Match    string `json:"match"`
}

// QueryResult pairs a batch query index with its matches.
type QueryResult struct {
	Index   int           `json:"index"`
	Matches []MatchOutput `json:"matches"`
}

// SingleResponse answers a one-query request.
type SingleResponse struct {
	ID      string        `json:"id"`
	Status  int           `json:"status"`
	Results []MatchOutput `json:"results"`
}

// BatchResponse answers a multi-query request.
type BatchResponse struct {
	ID      string        `json:"id"`
	Status  int           `json:"status"`
	Results []QueryResult `json:"results"`
}

// ErrorResponse reports a malformed request.
type ErrorResponse struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// ToMatchOutputs converts matcher results to wire form. The xref's substring
// before the first tab becomes the id; the next tab-separated field the
// category (empty when the xref has no tabs at all).
func ToMatchOutputs(results []trie.MatchResult) []MatchOutput {
	out := make([]MatchOutput, 0, len(results))
	for _, r := range results {
		id, rest, _ := strings.Cut(r.Xref, "\t")
		category, _, _ := strings.Cut(rest, "\t")
		out = append(out, MatchOutput{
			Category: category,
			ID:       id,
			Pattern:  r.Text,
			Match:    r.Match,
		})
	}
	return out
}
