package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/formloop/formloop/internal/models"
)

const (
	minQuestions = 3
	maxQuestions = 5
	maxTitleLen  = 200
	maxDescLen   = 500
)

// FormStore abstracts form persistence. UpdateFormOwned and
// DeleteFormOwned match on id AND owner in a single conditional write,
// so a form owned by someone else is indistinguishable from a missing
// one.
type FormStore interface {
	AddForm(f *models.Form) error
	GetForm(id string) (*models.Form, error)
	GetFormOwned(ownerID, formID string) (*models.Form, error)
	ListFormsByOwner(ownerID string) ([]*models.Form, error)
	UpdateFormOwned(ownerID string, f *models.Form) (*models.Form, error)
	DeleteFormOwned(ownerID, formID string) (bool, error)
}

// FormService enforces the form invariants: 3-5 questions per form,
// at least two options per multiple-choice question, and owner-scoped
// mutation.
type FormService struct {
	store FormStore
	now   func() time.Time
	idGen func(n int) string
}

type FormInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
	IsActive    bool              `json:"isActive"`
}

func NewFormService(store FormStore) *FormService {
	return &FormService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *FormService) Create(ownerID string, in FormInput) (*models.Form, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("not authenticated")
	}
	if strings.TrimSpace(in.Title) == "" || in.Questions == nil {
		return nil, NewInvalidError("title and questions are required")
	}
	title, desc, questions, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	f := &models.Form{
		ID:          s.idGen(12),
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Questions:   questions,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddForm(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Get is public: the submission page loads forms without a session.
func (s *FormService) Get(formID string) (*models.Form, error) {
	f, err := s.store.GetForm(formID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, NewNotFoundError("form not found")
	}
	return f, nil
}

func (s *FormService) List(ownerID string) ([]*models.Form, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("not authenticated")
	}
	return s.store.ListFormsByOwner(ownerID)
}

// Update replaces the four mutable fields. Validation happens before
// the write; a failed request leaves the stored form untouched.
func (s *FormService) Update(ownerID, formID string, in FormInput) (*models.Form, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("not authenticated")
	}
	title, desc, questions, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	f := &models.Form{
		ID:          formID,
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Questions:   questions,
		IsActive:    in.IsActive,
		UpdatedAt:   s.now(),
	}
	updated, err := s.store.UpdateFormOwned(ownerID, f)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, NewNotFoundError("form not found")
	}
	return updated, nil
}

// Delete removes the form. Its responses are left in place; see the
// orphan-allowed policy in DESIGN.md.
func (s *FormService) Delete(ownerID, formID string) error {
	if ownerID == "" {
		return NewUnauthorizedError("not authenticated")
	}
	ok, err := s.store.DeleteFormOwned(ownerID, formID)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("form not found")
	}
	return nil
}

func (s *FormService) validate(in FormInput) (title, desc string, questions []models.Question, err error) {
	title = strings.TrimSpace(in.Title)
	if title == "" {
		return "", "", nil, NewInvalidError("title is required")
	}
	if len(title) > maxTitleLen {
		return "", "", nil, NewInvalidError(fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	desc = strings.TrimSpace(in.Description)
	if len(desc) > maxDescLen {
		return "", "", nil, NewInvalidError(fmt.Sprintf("description must be at most %d characters", maxDescLen))
	}
	if len(in.Questions) < minQuestions || len(in.Questions) > maxQuestions {
		return "", "", nil, NewInvalidError(fmt.Sprintf("a form must have between %d and %d questions", minQuestions, maxQuestions))
	}
	questions = make([]models.Question, 0, len(in.Questions))
	seen := map[string]struct{}{}
	for i, q := range in.Questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			return "", "", nil, NewInvalidError(fmt.Sprintf("question %d has no text", i+1))
		}
		if q.ID == "" {
			q.ID = s.idGen(8)
		}
		if _, dup := seen[q.ID]; dup {
			return "", "", nil, NewInvalidError(fmt.Sprintf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = struct{}{}
		switch q.Type {
		case models.QuestionText:
			q.Options = nil
		case models.QuestionMultipleChoice:
			opts := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				if o = strings.TrimSpace(o); o != "" {
					opts = append(opts, o)
				}
			}
			if len(opts) < 2 {
				return "", "", nil, NewInvalidError(fmt.Sprintf("question %q needs at least 2 options", q.Question))
			}
			q.Options = opts
		default:
			return "", "", nil, NewInvalidError(fmt.Sprintf("question %d has unknown type %q", i+1, q.Type))
		}
		questions = append(questions, q)
	}
	return title, desc, questions, nil
}
