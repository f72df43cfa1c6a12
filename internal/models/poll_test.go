package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollApplyResultFirstSubmission(t *testing.T) {
	poll := &Poll{}
	poll.ApplyResult(&PollResult{Question1: 5, Question2: 4, Question3: 3, Question4: 5, Question5: 4}, 0)

	expected := []float64{5, 4, 3, 5, 4}
	for i, avg := range poll.Averages() {
		require.NotNil(t, avg)
		assert.InDelta(t, expected[i], *avg, 1e-9, "question %d", i+1)
	}
}

func TestPollApplyResultIncremental(t *testing.T) {
	poll := &Poll{}
	poll.ApplyResult(&PollResult{Question1: 5, Question2: 4, Question3: 3, Question4: 5, Question5: 4}, 0)
	poll.ApplyResult(&PollResult{Question1: 1, Question2: 1, Question3: 1, Question4: 1, Question5: 1}, 1)

	expected := []float64{3, 2.5, 2, 3, 2.5}
	for i, avg := range poll.Averages() {
		require.NotNil(t, avg)
		assert.InDelta(t, expected[i], *avg, 1e-9, "question %d", i+1)
	}
}

func TestPollApplyResultMatchesFullRecompute(t *testing.T) {
	// The running average after N submissions must equal the plain mean of
	// all scores, independent of arrival order.
	sequences := [][]int{
		{5, 1, 3, 4, 2, 5, 5, 1},
		{1, 5, 5, 2, 4, 3, 1, 5},
	}
	for _, scores := range sequences {
		poll := &Poll{}
		sum := 0
		for n, score := range scores {
			poll.ApplyResult(&PollResult{
				Question1: score, Question2: score, Question3: score,
				Question4: score, Question5: score,
			}, n)
			sum += score
		}
		mean := float64(sum) / float64(len(scores))
		for _, avg := range poll.Averages() {
			require.NotNil(t, avg)
			assert.InDelta(t, mean, *avg, 1e-9)
		}
	}
}

func TestPollAverageMarkRequiresAllQuestions(t *testing.T) {
	four := 4.0
	poll := &Poll{
		Question1AvgMark: &four,
		Question2AvgMark: &four,
		Question3AvgMark: &four,
		Question4AvgMark: &four,
	}
	assert.Nil(t, poll.AverageMark(), "incomplete poll must not produce a rating")

	poll.Question5AvgMark = &four
	overall := poll.AverageMark()
	require.NotNil(t, overall)
	assert.InDelta(t, 4.0, *overall, 1e-9)
}

func TestPollAverageMarkEmptyPoll(t *testing.T) {
	poll := &Poll{}
	assert.Nil(t, poll.AverageMark())
}
