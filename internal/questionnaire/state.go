package questionnaire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"rtm-portal/internal/model"
)

var (
	ErrFinished      = errors.New("questionnaire already finished")
	ErrNotCurrent    = errors.New("question is not the current question")
	ErrInvalidAnswer = errors.New("invalid answer")
	ErrNothingToUndo = errors.New("no answer to go back from")
)

// State is a position in a flow. Exactly one of Current and Outcome is set.
type State struct {
	Current string         `json:"current,omitempty"`
	Answers []model.Answer `json:"answers"`
	Outcome string         `json:"outcome,omitempty"`
}

func (s State) Done() bool {
	return s.Outcome != ""
}

// Value returns the recorded answer to questionID.
func (s State) Value(questionID string) (string, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return "", false
}

func (f *Flow) Start() State {
	return State{Current: f.StartID, Answers: []model.Answer{}}
}

// Answer records answer for questionID and moves to the next node.
func (f *Flow) Answer(s State, questionID, answer string) (State, error) {
	if s.Done() {
		return s, ErrFinished
	}
	if questionID != s.Current {
		return s, fmt.Errorf("%w: expected %q, got %q", ErrNotCurrent, s.Current, questionID)
	}
	q, ok := f.Questions[questionID]
	if !ok {
		return s, fmt.Errorf("%w: unknown question %q", ErrNotCurrent, questionID)
	}

	answer = strings.TrimSpace(answer)
	next, err := q.route(answer)
	if err != nil {
		return s, err
	}

	out := State{
		Answers: append(append([]model.Answer{}, s.Answers...), model.Answer{QuestionID: questionID, Value: answer}),
	}
	if _, isOutcome := f.Outcomes[next]; isOutcome {
		out.Outcome = next
	} else {
		out.Current = next
	}
	return out, nil
}

// Back undoes the most recent answer, reopening that question.
func (f *Flow) Back(s State) (State, error) {
	if len(s.Answers) == 0 {
		return s, ErrNothingToUndo
	}
	last := s.Answers[len(s.Answers)-1]
	return State{
		Current: last.QuestionID,
		Answers: append([]model.Answer{}, s.Answers[:len(s.Answers)-1]...),
	}, nil
}

func (q *Question) route(answer string) (string, error) {
	switch q.Type {
	case TypeSingleChoice, TypeYesNo:
		for _, o := range q.Options {
			if o.Value == answer {
				if o.Next != "" {
					return o.Next, nil
				}
				return q.Next, nil
			}
		}
		return "", fmt.Errorf("%w: %q is not an option of %q", ErrInvalidAnswer, answer, q.ID)

	case TypeNumber:
		n, err := strconv.ParseFloat(answer, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, answer)
		}
		for _, r := range q.Rules {
			if r.matches(n) {
				return r.Next, nil
			}
		}
		return q.Next, nil

	default:
		if answer == "" {
			return "", fmt.Errorf("%w: %q needs an answer", ErrInvalidAnswer, q.ID)
		}
		return q.Next, nil
	}
}

func (r Rule) matches(n float64) bool {
	switch r.Op {
	case "lt":
		return n < r.Value
	case "lte":
		return n <= r.Value
	case "gt":
		return n > r.Value
	case "gte":
		return n >= r.Value
	case "eq":
		return n == r.Value
	}
	return false
}
