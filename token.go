package ttsmaker

import (
	"context"
	"net/url"
	"time"

	"github.com/ekisa-team/ttsmaker/internal/mapsafe"
)

// TokenStatus reports quota usage for the configured credential.
type TokenStatus struct {
	Token               string
	MaxCharacters       int
	UsedCharacters      int
	RemainingCharacters int

	raw map[string]any
}

type tokenStatusResponse struct {
	apiStatus
	Token               string `json:"token"`
	MaxCharacters       int    `json:"max_characters"`
	UsedCharacters      int    `json:"used_characters"`
	RemainingCharacters int    `json:"remaining_characters"`
}

// NextReset returns the start of the next quota cycle, when reported, and the
// zero time otherwise.
func (s *TokenStatus) NextReset() time.Time {
	ts := mapsafe.Get(s.raw, "next_reset_unix", int64(0))
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// GetTokenStatus fetches quota information for the client's token: total,
// used and remaining characters for the current cycle.
func (c *Client) GetTokenStatus(ctx context.Context) (*TokenStatus, error) {
	query := url.Values{"token": {c.token}}

	var r tokenStatusResponse
	raw, err := c.getJSON(ctx, "get-token-status", query, &r)
	if err != nil {
		return nil, err
	}

	return &TokenStatus{
		Token:               r.Token,
		MaxCharacters:       r.MaxCharacters,
		UsedCharacters:      r.UsedCharacters,
		RemainingCharacters: r.RemainingCharacters,
		raw:                 raw,
	}, nil
}
