package questionnaire

import (
	"errors"
	"fmt"
	"strings"
)

var validOps = map[string]bool{"lt": true, "lte": true, "gt": true, "gte": true, "eq": true}

// Validate checks that the flow is a well-formed acyclic graph: the start
// question exists, every next resolves, every question is reachable and
// every path ends in an outcome.
func (f *Flow) Validate() error {
	var errs []error
	if f.ID == "" {
		errs = append(errs, errors.New("flow id is required"))
	}
	if len(f.Outcomes) == 0 {
		errs = append(errs, errors.New("flow has no outcomes"))
	}
	if _, ok := f.Questions[f.StartID]; !ok {
		errs = append(errs, fmt.Errorf("start question %q not found", f.StartID))
	}
	for id := range f.Outcomes {
		if _, ok := f.Questions[id]; ok {
			errs = append(errs, fmt.Errorf("id %q is both a question and an outcome", id))
		}
	}
	for _, id := range f.questionIDs() {
		errs = append(errs, f.validateQuestion(f.Questions[id])...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return f.checkGraph()
}

func (f *Flow) validateQuestion(q *Question) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("question %q: "+format, append([]any{q.ID}, args...)...))
	}
	resolves := func(next string) bool {
		_, isQ := f.Questions[next]
		_, isO := f.Outcomes[next]
		return isQ || isO
	}

	if strings.TrimSpace(q.Text) == "" {
		fail("text is required")
	}
	switch q.Type {
	case TypeSingleChoice, TypeYesNo:
		if len(q.Options) == 0 {
			fail("needs options")
		}
		seen := map[string]bool{}
		for _, o := range q.Options {
			if o.Value == "" {
				fail("option with empty value")
			}
			if seen[o.Value] {
				fail("duplicate option %q", o.Value)
			}
			seen[o.Value] = true
			if o.Next == "" && q.Next == "" {
				fail("option %q has nowhere to go", o.Value)
			}
		}
		if len(q.Rules) > 0 {
			fail("rules are only allowed on number questions")
		}
	case TypeNumber:
		for _, r := range q.Rules {
			if !validOps[r.Op] {
				fail("unknown rule op %q", r.Op)
			}
			if r.Next == "" {
				fail("rule %s %v has no next", r.Op, r.Value)
			}
		}
		if q.Next == "" {
			fail("number questions need a fallback next")
		}
	case TypeText:
		if q.Next == "" {
			fail("next is required")
		}
	default:
		fail("unknown type %q", q.Type)
	}
	for _, next := range q.targets() {
		if !resolves(next) {
			fail("next %q does not resolve", next)
		}
	}
	return errs
}

// checkGraph walks from the start question looking for cycles, then reports
// any question the walk never reached.
func (f *Flow) checkGraph() error {
	const (
		unseen = iota
		active
		done
	)
	state := make(map[string]int, len(f.Questions))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		q, ok := f.Questions[id]
		if !ok {
			return nil
		}
		switch state[id] {
		case active:
			return fmt.Errorf("cycle: %s -> %s", strings.Join(path, " -> "), id)
		case done:
			return nil
		}
		state[id] = active
		for _, next := range q.targets() {
			if err := visit(next, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	if err := visit(f.StartID, nil); err != nil {
		return err
	}

	var unreachable []string
	for _, id := range f.questionIDs() {
		if state[id] != done {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		return fmt.Errorf("unreachable questions: %s", strings.Join(unreachable, ", "))
	}
	return nil
}
