package attempt

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// makePaper builds n one-mark questions whose correct answer is "right".
func makePaper(n int) []PreparedQuestion {
	paper := make([]PreparedQuestion, 0, n)
	for i := 0; i < n; i++ {
		paper = append(paper, PreparedQuestion{
			ID:            uuid.New(),
			Text:          fmt.Sprintf("question %d", i),
			Options:       []model.Option{{Text: "right", IsCorrect: true}, {Text: "wrong"}},
			CorrectAnswer: "right",
			Marks:         1,
		})
	}
	return paper
}

func answerPaper(paper []PreparedQuestion, correct, wrong int) map[string]string {
	answers := make(map[string]string)
	for i := 0; i < correct; i++ {
		answers[paper[i].ID.String()] = "right"
	}
	for i := correct; i < correct+wrong; i++ {
		answers[paper[i].ID.String()] = "wrong"
	}
	return answers
}

func TestScoreNegativeMarking(t *testing.T) {
	// 10 questions at 1 mark, 0.25 penalty: 6 correct, 3 wrong, 1 skipped.
	paper := makePaper(10)
	answers := answerPaper(paper, 6, 3)
	cfg := model.ExamConfig{NegativeMarking: true, NegativeMarkValue: 0.25}

	s := Score(paper, answers, cfg, 10)

	if s.Correct != 6 || s.Wrong != 3 || s.Skipped != 1 {
		t.Fatalf("counts = %d/%d/%d, want 6/3/1", s.Correct, s.Wrong, s.Skipped)
	}
	if s.Raw != 5.25 {
		t.Errorf("raw = %v, want 5.25", s.Raw)
	}
	if s.Score != 5.25 {
		t.Errorf("score = %v, want 5.25", s.Score)
	}
	if s.Percentage != 53 {
		t.Errorf("percentage = %d, want 53 (round of 52.5)", s.Percentage)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	paper := makePaper(4)
	answers := answerPaper(paper, 1, 3)
	cfg := model.ExamConfig{NegativeMarking: true, NegativeMarkValue: 1}

	s := Score(paper, answers, cfg, 4)

	if s.Raw != -2 {
		t.Errorf("raw = %v, want -2", s.Raw)
	}
	if s.Score != 0 {
		t.Errorf("score = %v, want clamped 0", s.Score)
	}
	if s.Percentage != 0 {
		t.Errorf("percentage = %d, want 0", s.Percentage)
	}
}

func TestScoreWithoutNegativeMarking(t *testing.T) {
	paper := makePaper(5)
	answers := answerPaper(paper, 2, 3)

	s := Score(paper, answers, model.ExamConfig{}, 5)

	if s.Score != 2 {
		t.Errorf("score = %v, want 2 (wrong answers cost nothing)", s.Score)
	}
	if s.Percentage != 40 {
		t.Errorf("percentage = %d, want 40", s.Percentage)
	}
}

func TestScoreZeroTotalMarks(t *testing.T) {
	paper := makePaper(3)
	answers := answerPaper(paper, 3, 0)

	s := Score(paper, answers, model.ExamConfig{}, 0)

	if s.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 when total marks is 0", s.Percentage)
	}
}

func TestScoreEmptyAnswerCountsAsSkipped(t *testing.T) {
	paper := makePaper(2)
	answers := map[string]string{paper[0].ID.String(): ""}

	s := Score(paper, answers, model.ExamConfig{NegativeMarking: true, NegativeMarkValue: 1}, 2)

	if s.Skipped != 2 || s.Wrong != 0 {
		t.Errorf("skipped/wrong = %d/%d, want 2/0", s.Skipped, s.Wrong)
	}
	if s.Score != 0 {
		t.Errorf("score = %v, want 0 with no penalty", s.Score)
	}
}

func TestBuildPaperNormalizesAndKeepsOrder(t *testing.T) {
	exam := &model.Exam{ID: uuid.New(), MarksPerQuestion: 2}
	questions := []model.Question{
		{ID: uuid.New(), QuestionTextBn: "ক", Options: json.RawMessage(`["x", {"text":"y","isCorrect":true}]`)},
		{ID: uuid.New(), QuestionTextEn: "b", Options: json.RawMessage(`[{"text":"z","isCorrect":true}]`)},
	}

	paper := BuildPaper(exam, model.ExamConfig{}, questions, newTestRand())

	if len(paper) != 2 {
		t.Fatalf("got %d questions", len(paper))
	}
	if paper[0].ID != questions[0].ID || paper[1].ID != questions[1].ID {
		t.Error("order should be preserved without shuffle")
	}
	if paper[0].CorrectAnswer != "y" || paper[1].CorrectAnswer != "z" {
		t.Errorf("answer keys = %q, %q", paper[0].CorrectAnswer, paper[1].CorrectAnswer)
	}
	if paper[0].Marks != 2 {
		t.Errorf("marks = %v, want exam's marks per question", paper[0].Marks)
	}
	if paper[0].Text != "ক" || paper[1].Text != "b" {
		t.Errorf("texts = %q, %q", paper[0].Text, paper[1].Text)
	}
}
