// Package questionnaire walks the eligibility question graph. A flow is a set
// of questions whose answers point at the next question or at an outcome.
package questionnaire

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

const (
	TypeSingleChoice = "single_choice"
	TypeYesNo        = "yes_no"
	TypeNumber       = "number"
	TypeText         = "text"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Next  string `json:"next,omitempty"`
}

// Rule routes a number answer. Rules are tried in order.
type Rule struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
	Next  string  `json:"next"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Help    string   `json:"help,omitempty"`
	Type    string   `json:"type"`
	Options []Option `json:"options,omitempty"`
	Rules   []Rule   `json:"rules,omitempty"`
	Next    string   `json:"next,omitempty"`
}

type Outcome struct {
	ID       string `json:"id"`
	Eligible bool   `json:"eligible"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

type Flow struct {
	ID        string               `json:"id"`
	StartID   string               `json:"start"`
	Questions map[string]*Question `json:"questions"`
	Outcomes  map[string]*Outcome  `json:"outcomes"`
}

// Load decodes and validates a flow. Question and outcome ids are taken from
// their map keys.
func Load(r io.Reader) (*Flow, error) {
	var f Flow
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode flow: %w", err)
	}
	for id, q := range f.Questions {
		if q == nil {
			return nil, fmt.Errorf("question %q is empty", id)
		}
		q.ID = id
	}
	for id, o := range f.Outcomes {
		if o == nil {
			return nil, fmt.Errorf("outcome %q is empty", id)
		}
		o.ID = id
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Flow) Question(id string) (*Question, bool) {
	q, ok := f.Questions[id]
	return q, ok
}

func (f *Flow) Outcome(id string) (*Outcome, bool) {
	o, ok := f.Outcomes[id]
	return o, ok
}

// targets lists every node a question can lead to, in a stable order.
func (q *Question) targets() []string {
	var out []string
	for _, o := range q.Options {
		if o.Next != "" {
			out = append(out, o.Next)
		}
	}
	for _, r := range q.Rules {
		out = append(out, r.Next)
	}
	if q.Next != "" {
		out = append(out, q.Next)
	}
	return out
}

func (f *Flow) questionIDs() []string {
	ids := make([]string, 0, len(f.Questions))
	for id := range f.Questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
