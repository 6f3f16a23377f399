package services

import (
	"fmt"
	"time"

	"github.com/formloop/formloop/internal/models"
)

// ResponseStore abstracts the persistence required by response intake.
type ResponseStore interface {
	GetForm(id string) (*models.Form, error)
	AddResponse(r *models.Response) error
}

// SubmitRequest carries a sanitized public submission into the service
// layer. IPAddress and UserAgent are best-effort request metadata.
type SubmitRequest struct {
	FormID    string
	Answers   []models.Answer
	IPAddress string
	UserAgent string
}

// ResponseService accepts anonymous submissions subject to form state.
// There is no duplicate detection: a respondent may submit any number
// of times.
type ResponseService struct {
	store ResponseStore
	now   func() time.Time
	idGen func(n int) string
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *ResponseService) Submit(req SubmitRequest) (*models.Response, error) {
	form, err := s.store.GetForm(req.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	if !form.IsActive {
		return nil, NewFormInactiveError("this form is no longer accepting responses")
	}
	if len(req.Answers) == 0 {
		return nil, NewInvalidError("answers are required")
	}

	// A required question is satisfied by the presence of an answer
	// referencing its id, even if the answer text is empty. Answers for
	// ids the form does not declare are stored as-is and ignored by the
	// aggregator.
	answered := make(map[string]struct{}, len(req.Answers))
	for _, a := range req.Answers {
		answered[a.QuestionID] = struct{}{}
	}
	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		if _, ok := answered[q.ID]; !ok {
			return nil, NewInvalidError(fmt.Sprintf("question %q is required", q.Question))
		}
	}

	ip := req.IPAddress
	if ip == "" {
		ip = "unknown"
	}
	ua := req.UserAgent
	if ua == "" {
		ua = "unknown"
	}
	r := &models.Response{
		ID:          s.idGen(12),
		FormID:      form.ID,
		Answers:     req.Answers,
		SubmittedAt: s.now(),
		IPAddress:   ip,
		UserAgent:   ua,
	}
	if err := s.store.AddResponse(r); err != nil {
		return nil, err
	}
	return r, nil
}
