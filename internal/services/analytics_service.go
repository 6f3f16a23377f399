package services

import (
	"math"
	"time"

	"github.com/formloop/formloop/internal/models"
)

// AnalyticsStore abstracts the reads needed for the dashboard view.
// ListResponsesByForm returns responses sorted by submission time
// descending.
type AnalyticsStore interface {
	GetFormOwned(ownerID, formID string) (*models.Form, error)
	ListResponsesByForm(formID string) ([]*models.Response, error)
}

type QuestionSummary struct {
	QuestionID    string         `json:"questionId"`
	Question      string         `json:"question"`
	Type          string         `json:"type"`
	TotalAnswers  int            `json:"totalAnswers"`
	OptionCounts  map[string]int `json:"optionCounts,omitempty"`
	RecentAnswers []string       `json:"recentAnswers,omitempty"`
}

type Summary struct {
	TotalResponses         int               `json:"totalResponses"`
	AverageResponsesPerDay float64           `json:"averageResponsesPerDay"`
	QuestionSummaries      []QuestionSummary `json:"questionSummaries"`
}

// Overview bundles everything the dashboard renders for one form.
type Overview struct {
	Form      *models.Form       `json:"form"`
	Responses []*models.Response `json:"responses"`
	Summary   *Summary           `json:"summary"`
}

type AnalyticsService struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ResponsesOverview is owner-scoped: a form owned by someone else
// yields the same not-found error as a missing id.
func (s *AnalyticsService) ResponsesOverview(ownerID, formID string) (*Overview, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("not authenticated")
	}
	form, err := s.store.GetFormOwned(ownerID, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	responses, err := s.store.ListResponsesByForm(formID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Form:      form,
		Responses: responses,
		Summary:   Summarize(form, responses, s.now()),
	}, nil
}

// Summarize computes the dashboard summary as a pure function of the
// form, its responses and the current time. Responses are expected in
// most-recent-first order; the submissions-per-day rate is computed
// from min(submittedAt) directly rather than from sort position.
func Summarize(form *models.Form, responses []*models.Response, now time.Time) *Summary {
	sum := &Summary{
		TotalResponses:    len(responses),
		QuestionSummaries: []QuestionSummary{},
	}
	if len(responses) == 0 {
		return sum
	}

	oldest := responses[0].SubmittedAt
	for _, r := range responses[1:] {
		if r.SubmittedAt.Before(oldest) {
			oldest = r.SubmittedAt
		}
	}
	days := int(math.Ceil(now.Sub(oldest).Hours() / 24))
	if days < 1 {
		days = 1
	}
	sum.AverageResponsesPerDay = math.Round(float64(len(responses))/float64(days)*100) / 100

	for _, q := range form.Questions {
		qs := QuestionSummary{QuestionID: q.ID, Question: q.Question, Type: q.Type}
		matched := make([]string, 0, len(responses))
		for _, r := range responses {
			for _, a := range r.Answers {
				if a.QuestionID == q.ID {
					matched = append(matched, a.Answer)
					break
				}
			}
		}
		qs.TotalAnswers = len(matched)
		if q.Type == models.QuestionMultipleChoice {
			counts := make(map[string]int, len(q.Options))
			for _, opt := range q.Options {
				counts[opt] = 0
			}
			// Answers outside the declared options are dropped from the
			// tally entirely.
			for _, ans := range matched {
				if _, ok := counts[ans]; ok {
					counts[ans]++
				}
			}
			qs.OptionCounts = counts
		} else {
			recent := matched
			if len(recent) > 10 {
				recent = recent[:10]
			}
			sample := make([]string, 0, len(recent))
			for _, ans := range recent {
				if ans != "" {
					sample = append(sample, ans)
				}
			}
			qs.RecentAnswers = sample
		}
		sum.QuestionSummaries = append(sum.QuestionSummaries, qs)
	}
	return sum
}
