package services

import (
	"strings"
	"testing"
	"time"

	"github.com/formloop/formloop/internal/models"
)

type formStubStore struct {
	forms map[string]*models.Form
	adds  int
}

func newFormStubStore() *formStubStore {
	return &formStubStore{forms: map[string]*models.Form{}}
}

func (s *formStubStore) AddForm(f *models.Form) error {
	s.adds++
	cp := *f
	s.forms[f.ID] = &cp
	return nil
}

func (s *formStubStore) GetForm(id string) (*models.Form, error) {
	if f, ok := s.forms[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (s *formStubStore) GetFormOwned(ownerID, formID string) (*models.Form, error) {
	if f, ok := s.forms[formID]; ok && f.OwnerID == ownerID {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (s *formStubStore) ListFormsByOwner(ownerID string) ([]*models.Form, error) {
	out := []*models.Form{}
	for _, f := range s.forms {
		if f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *formStubStore) UpdateFormOwned(ownerID string, f *models.Form) (*models.Form, error) {
	cur, ok := s.forms[f.ID]
	if !ok || cur.OwnerID != ownerID {
		return nil, nil
	}
	cur.Title = f.Title
	cur.Description = f.Description
	cur.Questions = f.Questions
	cur.IsActive = f.IsActive
	cur.UpdatedAt = f.UpdatedAt
	cp := *cur
	return &cp, nil
}

func (s *formStubStore) DeleteFormOwned(ownerID, formID string) (bool, error) {
	cur, ok := s.forms[formID]
	if !ok || cur.OwnerID != ownerID {
		return false, nil
	}
	delete(s.forms, formID)
	return true, nil
}

func threeQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", Type: models.QuestionText, Question: "What went well?", Required: true},
		{ID: "q2", Type: models.QuestionMultipleChoice, Question: "Overall rating?", Options: []string{"Good", "Bad"}, Required: true},
		{ID: "q3", Type: models.QuestionText, Question: "Anything else?"},
	}
}

func expectInvalid(t *testing.T, err error) {
	t.Helper()
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormCreate(t *testing.T) {
	store := newFormStubStore()
	svc := NewFormService(store)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	f, err := svc.Create("u1", FormInput{Title: "  Team survey  ", Description: "weekly", Questions: threeQuestions()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if f.Title != "Team survey" {
		t.Fatalf("title not trimmed: %q", f.Title)
	}
	if !f.IsActive {
		t.Fatalf("new forms must be active")
	}
	if f.OwnerID != "u1" || f.ID == "" {
		t.Fatalf("unexpected form %+v", f)
	}
	if !f.CreatedAt.Equal(f.UpdatedAt) {
		t.Fatalf("createdAt and updatedAt should match on create")
	}
}

func TestFormCreateValidation(t *testing.T) {
	store := newFormStubStore()
	svc := NewFormService(store)

	cases := []struct {
		name string
		in   FormInput
	}{
		{"missing title", FormInput{Questions: threeQuestions()}},
		{"missing questions", FormInput{Title: "t"}},
		{"too few questions", FormInput{Title: "t", Questions: threeQuestions()[:2]}},
		{"too many questions", FormInput{Title: "t", Questions: append(threeQuestions(), models.Question{ID: "q4", Type: "text", Question: "a"}, models.Question{ID: "q5", Type: "text", Question: "b"}, models.Question{ID: "q6", Type: "text", Question: "c"})}},
		{"title too long", FormInput{Title: strings.Repeat("x", 201), Questions: threeQuestions()}},
		{"description too long", FormInput{Title: "t", Description: strings.Repeat("x", 501), Questions: threeQuestions()}},
		{"single option choice", FormInput{Title: "t", Questions: []models.Question{
			{ID: "q1", Type: "text", Question: "a"},
			{ID: "q2", Type: "multiple-choice", Question: "b", Options: []string{"only"}},
			{ID: "q3", Type: "text", Question: "c"},
		}}},
		{"blank options do not count", FormInput{Title: "t", Questions: []models.Question{
			{ID: "q1", Type: "text", Question: "a"},
			{ID: "q2", Type: "multiple-choice", Question: "b", Options: []string{"one", "  "}},
			{ID: "q3", Type: "text", Question: "c"},
		}}},
		{"empty question text", FormInput{Title: "t", Questions: []models.Question{
			{ID: "q1", Type: "text", Question: " "},
			{ID: "q2", Type: "text", Question: "b"},
			{ID: "q3", Type: "text", Question: "c"},
		}}},
		{"unknown type", FormInput{Title: "t", Questions: []models.Question{
			{ID: "q1", Type: "rating", Question: "a"},
			{ID: "q2", Type: "text", Question: "b"},
			{ID: "q3", Type: "text", Question: "c"},
		}}},
		{"duplicate question ids", FormInput{Title: "t", Questions: []models.Question{
			{ID: "q1", Type: "text", Question: "a"},
			{ID: "q1", Type: "text", Question: "b"},
			{ID: "q3", Type: "text", Question: "c"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create("u1", tc.in)
			expectInvalid(t, err)
		})
	}
	if store.adds != 0 {
		t.Fatalf("invalid requests must not write: %d writes", store.adds)
	}

	if _, err := svc.Create("", FormInput{Title: "t", Questions: threeQuestions()}); err == nil {
		t.Fatalf("expected unauthorized for missing caller")
	}
}

func TestFormCreateAssignsQuestionIDs(t *testing.T) {
	svc := NewFormService(newFormStubStore())
	qs := threeQuestions()
	qs[0].ID = ""
	f, err := svc.Create("u1", FormInput{Title: "t", Questions: qs})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if f.Questions[0].ID == "" {
		t.Fatalf("expected generated id for question without one")
	}
}

func TestFormUpdateHidesExistence(t *testing.T) {
	store := newFormStubStore()
	svc := NewFormService(store)

	f, err := svc.Create("owner", FormInput{Title: "t", Questions: threeQuestions()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	in := FormInput{Title: "new", Questions: threeQuestions(), IsActive: false}
	_, errForeign := svc.Update("intruder", f.ID, in)
	_, errMissing := svc.Update("intruder", "no-such-form", in)
	for _, err := range []error{errForeign, errMissing} {
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorNotFound {
			t.Fatalf("expected not_found, got %v", err)
		}
	}
	if errForeign.Error() != errMissing.Error() {
		t.Fatalf("foreign and missing forms must be indistinguishable: %q vs %q", errForeign, errMissing)
	}
	if got, _ := store.GetForm(f.ID); got.Title != "t" {
		t.Fatalf("foreign update must not mutate stored form: %+v", got)
	}

	updated, err := svc.Update("owner", f.ID, in)
	if err != nil {
		t.Fatalf("owner update returned error: %v", err)
	}
	if updated.Title != "new" || updated.IsActive {
		t.Fatalf("update did not replace fields: %+v", updated)
	}
}

func TestFormUpdateValidatesBeforeWrite(t *testing.T) {
	store := newFormStubStore()
	svc := NewFormService(store)
	f, err := svc.Create("owner", FormInput{Title: "t", Questions: threeQuestions()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err = svc.Update("owner", f.ID, FormInput{Title: "new", Questions: threeQuestions()[:1]})
	expectInvalid(t, err)
	if got, _ := store.GetForm(f.ID); got.Title != "t" || len(got.Questions) != 3 {
		t.Fatalf("failed validation must not mutate stored form")
	}
}

func TestFormDeleteHidesExistence(t *testing.T) {
	store := newFormStubStore()
	svc := NewFormService(store)
	f, err := svc.Create("owner", FormInput{Title: "t", Questions: threeQuestions()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	errForeign := svc.Delete("intruder", f.ID)
	errMissing := svc.Delete("intruder", "no-such-form")
	if errForeign == nil || errMissing == nil || errForeign.Error() != errMissing.Error() {
		t.Fatalf("foreign and missing deletes must match: %v vs %v", errForeign, errMissing)
	}
	if got, _ := store.GetForm(f.ID); got == nil {
		t.Fatalf("foreign delete must not remove the form")
	}

	if err := svc.Delete("owner", f.ID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if got, _ := store.GetForm(f.ID); got != nil {
		t.Fatalf("form still present after delete")
	}
}
