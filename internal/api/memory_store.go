package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/formloop/formloop/internal/models"
)

// memoryStore keeps everything in process memory. It backs the router
// tests and works as a throwaway dev store; production runs on the
// SQLite store.
type memoryStore struct {
	mu        sync.RWMutex
	users     map[string]*models.User // by id
	forms     map[string]*models.Form
	responses []*models.Response
}

func NewMemoryStore() Store {
	return &memoryStore{
		users: map[string]*models.User{},
		forms: map[string]*models.Form{},
	}
}

func (s *memoryStore) AddUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindUserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) AddForm(f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.forms[f.ID] = &cp
	return nil
}

func (s *memoryStore) GetForm(id string) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *memoryStore) GetFormOwned(ownerID, formID string) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[formID]
	if !ok || f.OwnerID != ownerID {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *memoryStore) ListFormsByOwner(ownerID string) ([]*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Form{}
	for _, f := range s.forms {
		if f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateFormOwned replaces the mutable fields under one lock, matching
// id and owner together so a foreign form looks exactly like a missing
// one.
func (s *memoryStore) UpdateFormOwned(ownerID string, f *models.Form) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memoryStore) DeleteFormOwned(ownerID, formID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.forms[formID]
	if !ok || cur.OwnerID != ownerID {
		return false, nil
	}
	delete(s.forms, formID)
	return true, nil
}

func (s *memoryStore) AddResponse(r *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.responses = append(s.responses, &cp)
	return nil
}

func (s *memoryStore) ListResponsesByForm(formID string) ([]*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Response{}
	for _, r := range s.responses {
		if r.FormID == formID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *memoryStore) Close() error { return nil }
