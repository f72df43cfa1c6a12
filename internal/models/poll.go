package models

import "time"

// QuestionCount is the number of rating questions on every poll.
const QuestionCount = 5

// Poll holds the running per-question averages for one meeting's feedback.
// Averages are nil until the first result arrives.
type Poll struct {
	ID               string     `db:"id" json:"id"`
	MeetingID        string     `db:"meeting_id" json:"meeting_id"`
	Question1AvgMark *float64   `db:"question1_avg_mark" json:"question1_avg_mark"`
	Question2AvgMark *float64   `db:"question2_avg_mark" json:"question2_avg_mark"`
	Question3AvgMark *float64   `db:"question3_avg_mark" json:"question3_avg_mark"`
	Question4AvgMark *float64   `db:"question4_avg_mark" json:"question4_avg_mark"`
	Question5AvgMark *float64   `db:"question5_avg_mark" json:"question5_avg_mark"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// PollResult is one respondent's immutable answer set.
type PollResult struct {
	ID        string    `db:"id" json:"id"`
	PollID    string    `db:"poll_id" json:"poll_id"`
	Question1 int       `db:"question1" json:"question1"`
	Question2 int       `db:"question2" json:"question2"`
	Question3 int       `db:"question3" json:"question3"`
	Question4 int       `db:"question4" json:"question4"`
	Question5 int       `db:"question5" json:"question5"`
	Comment1  *string   `db:"comment1" json:"comment1,omitempty"`
	Comment2  *string   `db:"comment2" json:"comment2,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Scores returns the five question scores in order.
func (r *PollResult) Scores() [QuestionCount]int {
	return [QuestionCount]int{r.Question1, r.Question2, r.Question3, r.Question4, r.Question5}
}

// Averages returns pointers to the five running averages in question order.
func (p *Poll) Averages() [QuestionCount]*float64 {
	return [QuestionCount]*float64{
		p.Question1AvgMark,
		p.Question2AvgMark,
		p.Question3AvgMark,
		p.Question4AvgMark,
		p.Question5AvgMark,
	}
}

// ApplyResult folds one new result into the running averages without
// rescanning prior results. priorCount is the number of results already
// recorded for the poll; the first result sets each average to its score.
func (p *Poll) ApplyResult(res *PollResult, priorCount int) {
	scores := res.Scores()
	updated := make([]float64, QuestionCount)
	for i, prior := range p.Averages() {
		if prior == nil || priorCount <= 0 {
			updated[i] = float64(scores[i])
			continue
		}
		updated[i] = (*prior*float64(priorCount) + float64(scores[i])) / float64(priorCount+1)
	}
	p.Question1AvgMark = &updated[0]
	p.Question2AvgMark = &updated[1]
	p.Question3AvgMark = &updated[2]
	p.Question4AvgMark = &updated[3]
	p.Question5AvgMark = &updated[4]
}

// AverageMark derives the poll's overall rating: the mean of the five
// per-question averages, defined only when all five are present. A poll
// that has never received a complete result contributes no rating.
func (p *Poll) AverageMark() *float64 {
	var sum float64
	for _, avg := range p.Averages() {
		if avg == nil {
			return nil
		}
		sum += *avg
	}
	mean := sum / QuestionCount
	return &mean
}
