package controllers

import (
	"strconv"

	"github.com/craftwl/whitelist-server/models"
)

// correctOptionIDs collects the ids of correct options. For reference-answer
// question types the single correct option carries the expected text.
func correctOptionIDs(q *models.Question) []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect != nil && *opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// objectiveQuestionScore grades one submitted answer against its question.
// Options must be preloaded. No partial credit anywhere; fill-blank is an
// exact string match with no normalization. Subjective answers always score 0
// here and are graded manually before review.
func objectiveQuestionScore(answer []string, q *models.Question) float64 {
	if len(answer) == 0 {
		return 0
	}
	correct := correctOptionIDs(q)

	switch q.QuestionType {
	case models.SingleChoice:
		id, err := strconv.ParseUint(answer[0], 10, 64)
		if err != nil {
			return 0
		}
		for _, c := range correct {
			if uint(id) == c {
				return q.Score
			}
		}

	case models.MultipleChoice:
		// graded on the selected set, so duplicates collapse before comparing
		picked := make(map[uint]bool, len(answer))
		for _, a := range answer {
			id, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return 0
			}
			picked[uint(id)] = true
		}
		if len(picked) != len(correct) {
			return 0
		}
		for _, c := range correct {
			if !picked[c] {
				return 0
			}
		}
		return q.Score

	case models.FillInTheBlank:
		if len(correct) == 0 {
			return 0
		}
		for _, opt := range q.Options {
			if opt.ID == correct[0] {
				if answer[0] == opt.OptionText {
					return q.Score
				}
				break
			}
		}
	}

	return 0
}

// makeAnswerDetails expands one submitted answer into detail rows:
// multi-choice gets one row per selected option, everything else one row.
func makeAnswerDetails(answer []string, q *models.Question, responseID uint) []models.ResponseDetail {
	if q.QuestionType == models.MultipleChoice {
		details := make([]models.ResponseDetail, 0, len(answer))
		for _, a := range answer {
			details = append(details, models.ResponseDetail{
				ResponseID: responseID,
				QuestionID: q.ID,
				Answer:     a,
			})
		}
		return details
	}
	return []models.ResponseDetail{{
		ResponseID: responseID,
		QuestionID: q.ID,
		Answer:     answer[0],
	}}
}
