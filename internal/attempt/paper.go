package attempt

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// PreparedQuestion is a question after the normalization boundary: uniform
// options, resolved correct answer and per-question marks. The attempt
// machine never touches raw payload shapes.
type PreparedQuestion struct {
	ID            uuid.UUID      `json:"id"`
	Text          string         `json:"question_text"`
	Options       []model.Option `json:"options"`
	CorrectAnswer string         `json:"-"`
	Explanation   string         `json:"-"`
	Marks         float64        `json:"marks"`
}

// BuildPaper turns raw questions into the in-memory paper for one attempt:
// options normalized to the uniform {text} shape and shuffled per question
// when configured, question order shuffled when configured, and every
// question worth the exam's marksPerQuestion.
func BuildPaper(exam *model.Exam, cfg model.ExamConfig, questions []model.Question, rng *rand.Rand) []PreparedQuestion {
	paper := make([]PreparedQuestion, 0, len(questions))

	for i := range questions {
		q := &questions[i]
		options := model.NormalizeOptions(q.Options)
		correct := model.CorrectAnswer(options)

		if cfg.ShuffleOptions {
			shuffle(options, rng)
		}

		paper = append(paper, PreparedQuestion{
			ID:            q.ID,
			Text:          q.Text(),
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   q.Explanation,
			Marks:         exam.MarksPerQuestion,
		})
	}

	if cfg.ShuffleQuestions {
		shuffle(paper, rng)
	}

	return paper
}
