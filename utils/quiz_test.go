package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAnswers(t *testing.T) {
	key := []AnswerKey{
		{QuestionID: 1, CorrectOption: "A"},
		{QuestionID: 2, CorrectOption: "B"},
		{QuestionID: 3, CorrectOption: "C"},
		{QuestionID: 4, CorrectOption: "D"},
	}

	score, correct, total := ScoreAnswers(key, map[string]string{
		"1": "A",
		"2": "B",
		"3": "C",
		"4": "A", // wrong
	})
	assert.Equal(t, 75.0, score)
	assert.Equal(t, 3, correct)
	assert.Equal(t, 4, total)
}

func TestScoreAnswersMissingAnswersCountWrong(t *testing.T) {
	key := []AnswerKey{
		{QuestionID: 1, CorrectOption: "A"},
		{QuestionID: 2, CorrectOption: "B"},
	}

	score, correct, total := ScoreAnswers(key, map[string]string{"1": "A"})
	assert.Equal(t, 50.0, score)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
}

func TestScoreAnswersEmptySubmission(t *testing.T) {
	key := []AnswerKey{
		{QuestionID: 1, CorrectOption: "A"},
		{QuestionID: 2, CorrectOption: "B"},
	}

	score, correct, total := ScoreAnswers(key, map[string]string{})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0, correct)
	assert.Equal(t, 2, total)
}

func TestScoreAnswersEmptyKey(t *testing.T) {
	score, correct, total := ScoreAnswers(nil, map[string]string{"1": "A"})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0, correct)
	assert.Equal(t, 0, total)
}

func TestScoreAnswersIgnoresExtraAnswers(t *testing.T) {
	key := []AnswerKey{{QuestionID: 7, CorrectOption: "D"}}

	score, correct, total := ScoreAnswers(key, map[string]string{
		"7":   "D",
		"999": "A",
	})
	assert.Equal(t, 100.0, score)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, total)
}
