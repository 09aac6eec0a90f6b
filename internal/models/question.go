package models

import "encoding/json"

// Question is one multiple-choice item of a room's question set. The engine only
// reads CorrectAnswer and the number of Options; everything else is passed through.
// A question decoded from JSON is re-encoded exactly as it was received, so ids of
// any JSON type and fields unknown to the server reach every participant intact.
type Question struct {
	ID            json.RawMessage `json:"id,omitempty"`
	Text          string          `json:"text"`
	Options       []string        `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int             `json:"correctAnswer" validate:"gte=0"`
	Explanation   string          `json:"explanation,omitempty"`
	Subject       string          `json:"subject,omitempty"`
	Subtopic      string          `json:"subtopic,omitempty"`
	Difficulty    string          `json:"difficulty,omitempty"`

	raw json.RawMessage
}

// questionFields has Question's fields without its JSON methods.
type questionFields Question

// UnmarshalJSON decodes the fields the engine reads and keeps the original bytes.
func (q *Question) UnmarshalJSON(data []byte) error {
	var f questionFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*q = Question(f)
	q.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the bytes the question was decoded from, if any.
func (q Question) MarshalJSON() ([]byte, error) {
	if len(q.raw) > 0 {
		return q.raw, nil
	}
	return json.Marshal(questionFields(q))
}
