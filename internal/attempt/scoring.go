package attempt

import (
	"math"

	"github.com/learnedu/learnedu-backend/internal/model"
)

// Summary is the scored outcome of one answer set.
type Summary struct {
	Raw        float64 // may be negative under negative marking
	Score      float64 // Raw clamped at 0; this is what gets persisted
	TotalMarks float64
	Percentage int
	Correct    int
	Wrong      int
	Skipped    int
}

// Score grades an answer map against a prepared paper. A correct answer
// adds the question's marks; a wrong (but answered) question subtracts
// NegativeMarkValue when negative marking is on; skipped questions
// contribute zero. The persisted score floors at 0 and the percentage is
// rounded, with totalMarks = 0 yielding 0.
func Score(paper []PreparedQuestion, answers map[string]string, cfg model.ExamConfig, totalMarks float64) Summary {
	s := Summary{TotalMarks: totalMarks}

	for i := range paper {
		q := &paper[i]
		given, answered := answers[q.ID.String()]
		switch {
		case !answered || given == "":
			s.Skipped++
		case given == q.CorrectAnswer:
			s.Correct++
			s.Raw += q.Marks
		default:
			s.Wrong++
			if cfg.NegativeMarking {
				s.Raw -= cfg.NegativeMarkValue
			}
		}
	}

	s.Score = math.Max(0, s.Raw)
	if totalMarks > 0 {
		s.Percentage = int(math.Round(s.Score / totalMarks * 100))
	}
	return s
}
