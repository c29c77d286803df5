package utils

import "strconv"

// AnswerKey pairs a question id with its correct option
type AnswerKey struct {
	QuestionID    uint
	CorrectOption string
}

// ScoreAnswers scores submitted answers against an answer key. Answers are
// keyed by decimal question id with values "A".."D"; absent or wrong answers
// score zero for that question. An empty key scores 0 without dividing.
// Deterministic and side-effect free.
func ScoreAnswers(key []AnswerKey, answers map[string]string) (score float64, correct int, total int) {
	total = len(key)
	if total == 0 {
		return 0, 0, 0
	}

	for _, q := range key {
		if answers[strconv.FormatUint(uint64(q.QuestionID), 10)] == q.CorrectOption {
			correct++
		}
	}

	score = float64(correct) / float64(total) * 100
	return score, correct, total
}
