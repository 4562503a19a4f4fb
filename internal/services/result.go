package services

import (
	"time"

	"github.com/kayz/osprey/internal/classify"
)

// Result is the record produced by exactly one (service, query, tag)
// attempt. It is immutable after construction: downstream aggregation only
// reads it.
type Result struct {
	Service      string         `json:"service"`
	Query        string         `json:"query"`
	QueryType    string         `json:"query_type"`
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data"`
	Error        string         `json:"error,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	ResponseTime float64        `json:"response_time"` // seconds
	StatusCode   int            `json:"status_code,omitempty"`
}

func newResult(service, query string, tag classify.Tag) Result {
	return Result{
		Service:   service,
		Query:     query,
		QueryType: tag.Subtype,
		Data:      map[string]any{},
		Timestamp: time.Now(),
	}
}

func failed(service, query string, tag classify.Tag, errMsg string) Result {
	r := newResult(service, query, tag)
	r.Error = errMsg
	return r
}

func unsupported(service, query string, tag classify.Tag) Result {
	return failed(service, query, tag, "unsupported query type")
}
