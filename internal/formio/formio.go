// Package formio is the ingestion boundary, kept deliberately out of
// scope: it turns a loosely typed JSON or YAML document into the
// strongly typed internal/form model, and nothing else. It is kept
// thin deliberately — the actual JSON parser and presentation layer
// remain external collaborators; this package only exists so
// cmd/formcoverage has something runnable to load a form from.
//
// goccy/go-yaml decodes both YAML and JSON documents (JSON is a
// syntactic subset of YAML), so one loader covers both without a
// second parser.
package formio

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gitrdm/formcoverage/internal/form"
)

type wireChoice struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type wirePredicate struct {
	Kind       string           `yaml:"kind"`
	QuestionID string           `yaml:"question,omitempty"`
	ChoiceID   string           `yaml:"choice,omitempty"`
	ChoiceIDs  []string         `yaml:"choices,omitempty"`
	Operands   []*wirePredicate `yaml:"operands,omitempty"`
}

type wireQuestion struct {
	ID        string         `yaml:"id"`
	Ordinal   int            `yaml:"ordinal"`
	Label     string         `yaml:"label"`
	Choices   []wireChoice   `yaml:"choices,omitempty"`
	FreeForm  bool           `yaml:"free_form,omitempty"`
	Predicate *wirePredicate `yaml:"visible_if,omitempty"`
}

type wireForm struct {
	Name      string         `yaml:"name"`
	Questions []wireQuestion `yaml:"questions"`
}

// Error reports a defect in the wire document itself (as opposed to a
// structural defect in the resulting form, which form.ValidationError
// reports once decoding succeeds).
type Error struct {
	QuestionID string
	Reason     string
}

func (e *Error) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("formio: %s", e.Reason)
	}
	return fmt.Sprintf("formio: question %q: %s", e.QuestionID, e.Reason)
}

// Load decodes a JSON or YAML document into a *form.Form. It does not
// call form.Validate; callers decide when to pay for that walk, same
// as form.New itself.
func Load(data []byte) (*form.Form, error) {
	var wf wireForm
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("decode: %v", err)}
	}

	questions := make([]*form.Question, 0, len(wf.Questions))
	for _, wq := range wf.Questions {
		q, err := toQuestion(wq)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return form.New(wf.Name, questions), nil
}

func toQuestion(wq wireQuestion) (*form.Question, error) {
	domain := form.Domain{FreeForm: wq.FreeForm}
	if !wq.FreeForm {
		domain.Enumerated = make([]form.Choice, len(wq.Choices))
		for i, wc := range wq.Choices {
			domain.Enumerated[i] = form.Choice{ID: wc.ID, Label: wc.Label, Encoding: i + 1}
		}
	}

	var pred *form.Predicate
	if wq.Predicate != nil {
		var err error
		pred, err = toPredicate(wq.Predicate)
		if err != nil {
			return nil, &Error{QuestionID: wq.ID, Reason: err.Error()}
		}
	}

	return &form.Question{
		ID:        form.QuestionID(wq.ID),
		Ordinal:   wq.Ordinal,
		Label:     wq.Label,
		Domain:    domain,
		Predicate: pred,
	}, nil
}

func toPredicate(wp *wirePredicate) (*form.Predicate, error) {
	switch strings.ToLower(wp.Kind) {
	case "equals":
		return form.EqualsPredicate(form.QuestionID(wp.QuestionID), wp.ChoiceID), nil
	case "not-equals":
		return form.NotEqualsPredicate(form.QuestionID(wp.QuestionID), wp.ChoiceID), nil
	case "in-set":
		return form.InSetPredicate(form.QuestionID(wp.QuestionID), wp.ChoiceIDs...), nil
	case "and", "or":
		operands := make([]*form.Predicate, 0, len(wp.Operands))
		for _, wo := range wp.Operands {
			p, err := toPredicate(wo)
			if err != nil {
				return nil, err
			}
			operands = append(operands, p)
		}
		if strings.ToLower(wp.Kind) == "and" {
			return form.AndPredicate(operands...), nil
		}
		return form.OrPredicate(operands...), nil
	case "not":
		if len(wp.Operands) != 1 {
			return nil, fmt.Errorf("not predicate must have exactly one operand")
		}
		operand, err := toPredicate(wp.Operands[0])
		if err != nil {
			return nil, err
		}
		return form.NotPredicate(operand), nil
	default:
		return nil, fmt.Errorf("unrecognized predicate kind %q", wp.Kind)
	}
}
