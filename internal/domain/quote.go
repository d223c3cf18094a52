package domain

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// RouteStep is one hop of a quoted route. Its content is opaque to the
// engine; only the order of steps matters.
type RouteStep = json.RawMessage

// Quote mirrors the quote object returned by the aggregator. It is passed
// back verbatim (or merged) when requesting swap instructions, so fields
// the engine does not model are kept in Extra and re-emitted on encode.
type Quote struct {
	InputMint string `json:"inputMint"`

	InAmount uint64 `json:"inAmount,string"`

	OutputMint string `json:"outputMint"`

	OutAmount uint64 `json:"outAmount,string"`

	OtherAmountThreshold uint64 `json:"otherAmountThreshold,string"`

	SwapMode string `json:"swapMode"`

	SlippageBps uint16 `json:"slippageBps"`

	PlatformFee json.RawMessage `json:"platformFee"`

	PriceImpactPct string `json:"priceImpactPct"`

	RoutePlan []RouteStep `json:"routePlan"`

	ContextSlot uint64 `json:"contextSlot,omitempty"`

	TimeTaken float64 `json:"timeTaken,omitempty"`

	SwapUsdValue string `json:"swapUsdValue,omitempty"`

	SimplerRouteUsed bool `json:"simplerRouteUsed,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// quoteFields has Quote's layout without its codec methods.
type quoteFields Quote

var quoteKeys = map[string]struct{}{
	"inputMint":            {},
	"inAmount":             {},
	"outputMint":           {},
	"outAmount":            {},
	"otherAmountThreshold": {},
	"swapMode":             {},
	"slippageBps":          {},
	"platformFee":          {},
	"priceImpactPct":       {},
	"routePlan":            {},
	"contextSlot":          {},
	"timeTaken":            {},
	"swapUsdValue":         {},
	"simplerRouteUsed":     {},
}

func (q *Quote) UnmarshalJSON(data []byte) error {
	var fields quoteFields
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range quoteKeys {
		delete(raw, k)
	}

	*q = Quote(fields)
	q.Extra = nil
	if len(raw) > 0 {
		q.Extra = raw
	}
	return nil
}

// MarshalJSON writes the modelled fields and then any Extra key that does
// not collide with one of them.
func (q Quote) MarshalJSON() ([]byte, error) {
	known, err := sonic.Marshal(quoteFields(q))
	if err != nil || len(q.Extra) == 0 {
		return known, err
	}

	out := make(map[string]json.RawMessage, len(q.Extra)+len(quoteKeys))
	if err := sonic.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	for k, v := range q.Extra {
		if _, modelled := quoteKeys[k]; modelled {
			continue
		}
		out[k] = v
	}
	return sonic.Marshal(out)
}

// QuoteRequest holds the parameters of a single quote call.
type QuoteRequest struct {
	InputMint        string
	OutputMint       string
	Amount           uint64
	SlippageBps      uint16
	MaxAccounts      int
	OnlyDirectRoutes bool
}

// Clone returns a deep copy of q.
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	out := *q
	if q.PlatformFee != nil {
		out.PlatformFee = append(json.RawMessage(nil), q.PlatformFee...)
	}
	if q.RoutePlan != nil {
		out.RoutePlan = make([]RouteStep, len(q.RoutePlan))
		for i, step := range q.RoutePlan {
			out.RoutePlan[i] = append(RouteStep(nil), step...)
		}
	}
	if q.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(q.Extra))
		for k, v := range q.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}
