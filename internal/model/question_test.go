package model

import (
	"encoding/json"
	"testing"
)

func TestNormalizeOptionsMixedShapes(t *testing.T) {
	raw := json.RawMessage(`[
		"Dhaka",
		{"text": "Chittagong", "isCorrect": true},
		{"text": "Khulna"},
		{"isCorrect": true},
		42
	]`)

	options := NormalizeOptions(raw)

	if len(options) != 3 {
		t.Fatalf("got %d options, want 3 (malformed entries skipped)", len(options))
	}
	if options[0].Text != "Dhaka" || options[0].IsCorrect {
		t.Errorf("bare string option = %+v", options[0])
	}
	if options[1].Text != "Chittagong" || !options[1].IsCorrect {
		t.Errorf("object option = %+v", options[1])
	}
	if options[2].Text != "Khulna" || options[2].IsCorrect {
		t.Errorf("object without flag = %+v", options[2])
	}
}

func TestNormalizeOptionsBadPayload(t *testing.T) {
	if got := NormalizeOptions(nil); got != nil {
		t.Errorf("nil payload: got %v", got)
	}
	if got := NormalizeOptions(json.RawMessage(`{"not":"an array"}`)); got != nil {
		t.Errorf("non-array payload: got %v", got)
	}
}

func TestCorrectAnswer(t *testing.T) {
	options := []Option{
		{Text: "a"},
		{Text: "b", IsCorrect: true},
		{Text: "c", IsCorrect: true},
	}
	if got := CorrectAnswer(options); got != "b" {
		t.Errorf("got %q, want first flagged option", got)
	}
	if got := CorrectAnswer([]Option{{Text: "a"}}); got != "" {
		t.Errorf("no answer key: got %q, want empty", got)
	}
}

func TestQuestionTextPrefersBengali(t *testing.T) {
	q := Question{QuestionTextBn: "প্রশ্ন", QuestionTextEn: "question"}
	if q.Text() != "প্রশ্ন" {
		t.Errorf("got %q", q.Text())
	}
	q.QuestionTextBn = ""
	if q.Text() != "question" {
		t.Errorf("fallback got %q", q.Text())
	}
}
