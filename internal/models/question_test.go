package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_DecodedQuestionReencodesUnchanged(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"numeric id", `{"id":0,"text":"Q1","options":["a","b","c","d"],"correctAnswer":1}`},
		{"string id", `{"id":"q-17","text":"Q2","options":["a","b"],"correctAnswer":0}`},
		{"no id", `{"text":"Q3","options":["a","b"],"correctAnswer":1}`},
		{"unknown fields", `{"id":3,"text":"Q4","options":["a","b"],"correctAnswer":1,"image":"https://cdn/x.png","marks":{"right":4,"wrong":-1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))

			out, err := json.Marshal(q)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}

func TestQuestion_EngineFieldsDecoded(t *testing.T) {
	var qs []Question
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":7,"text":"Q","options":["a","b","c"],"correctAnswer":2,"subject":"Physics"}
	]`), &qs))

	require.Len(t, qs, 1)
	assert.Equal(t, 2, qs[0].CorrectAnswer)
	assert.Len(t, qs[0].Options, 3)
	assert.Equal(t, "Physics", qs[0].Subject)
	assert.JSONEq(t, `7`, string(qs[0].ID))
}

func TestQuestion_BuiltInGoEncodesFields(t *testing.T) {
	out, err := json.Marshal(Question{Text: "Q", Options: []string{"a", "b"}, CorrectAnswer: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Q","options":["a","b"],"correctAnswer":1}`, string(out))
}
