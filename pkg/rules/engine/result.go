package engine

import (
	"time"

	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

// Result is the outcome of one validation run.
type Result struct {
	RunID     string              `json:"run_id"`
	Ruleset   string              `json:"ruleset,omitempty"`
	Root      string              `json:"root"`
	Version   string              `json:"version,omitempty"`
	OK        bool                `json:"ok"`
	Errors    []ruleerrors.Record `json:"errors"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration_ns"`
}

// Err returns nil for a passing run, otherwise an *errors.List holding
// the run's records.
func (r *Result) Err() error {
	if r.OK && len(r.Errors) == 0 {
		return nil
	}
	list := ruleerrors.NewList()
	for _, rec := range r.Errors {
		list.Add(rec)
	}
	return list
}

// Fields returns the field path of every record, in order.
func (r *Result) Fields() []string {
	out := make([]string, len(r.Errors))
	for i, rec := range r.Errors {
		out[i] = rec.Field
	}
	return out
}

// collector holds the state of a single run: the records it accumulates
// and the documents it resolves against. It is never shared between runs.
type collector struct {
	list *ruleerrors.List
	docs Resolver
}

func newCollector(docs Resolver) *collector {
	return &collector{list: ruleerrors.NewList(), docs: docs}
}

func (c *collector) add(r ruleerrors.Record) {
	c.list.Add(r)
}

func (c *collector) records() []ruleerrors.Record {
	return c.list.Snapshot()
}
