package models

import (
	"bytes"
	"encoding/json"
)

// Field is an optional patch value. Set is true only when the key was
// present in the decoded payload, so an explicit null is distinguishable
// from an omitted key.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a Field marked as present.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

type QuizPatch struct {
	Title       Field[string]  `json:"title"`
	Description Field[*string] `json:"description"`
}

func (p QuizPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set
}

// Apply copies the present fields onto q.
func (p QuizPatch) Apply(q *Quiz) {
	if p.Title.Set {
		q.Title = p.Title.Value
	}
	if p.Description.Set {
		q.Description = p.Description.Value
	}
}

// Columns returns the column updates for the present fields.
func (p QuizPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title.Set {
		cols["title"] = p.Title.Value
	}
	if p.Description.Set {
		cols["description"] = p.Description.Value
	}
	return cols
}

type QuestionPatch struct {
	Text Field[string] `json:"text"`
}

func (p QuestionPatch) Empty() bool {
	return !p.Text.Set
}

func (p QuestionPatch) Apply(q *Question) {
	if p.Text.Set {
		q.Text = p.Text.Value
	}
}

func (p QuestionPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Text.Set {
		cols["text"] = p.Text.Value
	}
	return cols
}

type AnswerPatch struct {
	Text      Field[string] `json:"text"`
	IsCorrect Field[bool]   `json:"is_correct"`
}

func (p AnswerPatch) Empty() bool {
	return !p.Text.Set && !p.IsCorrect.Set
}

func (p AnswerPatch) Apply(a *Answer) {
	if p.Text.Set {
		a.Text = p.Text.Value
	}
	if p.IsCorrect.Set {
		a.IsCorrect = p.IsCorrect.Value
	}
}

func (p AnswerPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Text.Set {
		cols["text"] = p.Text.Value
	}
	if p.IsCorrect.Set {
		cols["is_correct"] = p.IsCorrect.Value
	}
	return cols
}
