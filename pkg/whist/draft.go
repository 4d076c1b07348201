package whist

import (
	"encoding/json"
	"fmt"
)

// DraftStep tells which step of the round a draft was saved in
type DraftStep string

// DraftStep constants
const (
	DraftStepCalls   DraftStep = "calls"
	DraftStepResults DraftStep = "results"
)

// Draft is a round being registered that has not been submitted yet
// It is either a *CallsStepDraft or a *ResultsStepDraft
type Draft interface {
	Step() DraftStep
	Round() int
	isDraft()
}

// CallsStepDraft is saved while the players are calling
type CallsStepDraft struct {
	RoundIndex int   `json:"roundIndex"`
	Calls      []int `json:"calls"`
	CallIndex  int   `json:"callIndex"`
	IsFixing   bool  `json:"isFixing"`
	IsInError  bool  `json:"isInError"`
}

// Step returns DraftStepCalls
func (c *CallsStepDraft) Step() DraftStep {
	return DraftStepCalls
}

// Round returns the round index
func (c *CallsStepDraft) Round() int {
	return c.RoundIndex
}

func (c *CallsStepDraft) isDraft() {}

// ResultsStepDraft is saved once every call is known and the results are being entered
type ResultsStepDraft struct {
	RoundIndex int   `json:"roundIndex"`
	Calls      []int `json:"calls"`
	Results    []int `json:"results"`
}

// Step returns DraftStepResults
func (r *ResultsStepDraft) Step() DraftStep {
	return DraftStepResults
}

// Round returns the round index
func (r *ResultsStepDraft) Round() int {
	return r.RoundIndex
}

func (r *ResultsStepDraft) isDraft() {}

type draftEnvelope struct {
	Step  DraftStep       `json:"step"`
	Draft json.RawMessage `json:"draft"`
}

// MarshalDraft encodes a draft along with its step
func MarshalDraft(d Draft) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	return json.Marshal(draftEnvelope{
		Step:  d.Step(),
		Draft: b,
	})
}

// UnmarshalDraft decodes a draft encoded by MarshalDraft
func UnmarshalDraft(b []byte) (Draft, error) {
	var env draftEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}

	var d Draft
	switch env.Step {
	case DraftStepCalls:
		d = &CallsStepDraft{}
	case DraftStepResults:
		d = &ResultsStepDraft{}
	default:
		return nil, fmt.Errorf("unknown draft step: %q", env.Step)
	}

	if err := json.Unmarshal(env.Draft, d); err != nil {
		return nil, err
	}

	return d, nil
}
