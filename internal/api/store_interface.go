package api

import "github.com/formloop/formloop/internal/models"

// Store is the full persistence surface. Each service depends only on
// the narrow slice it needs (services.AuthStore, services.FormStore,
// ...); both the in-memory store and the SQLite store satisfy all of
// them.
type Store interface {
	AddUser(u *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)

	AddForm(f *models.Form) error
	GetForm(id string) (*models.Form, error)
	GetFormOwned(ownerID, formID string) (*models.Form, error)
	ListFormsByOwner(ownerID string) ([]*models.Form, error)
	UpdateFormOwned(ownerID string, f *models.Form) (*models.Form, error)
	DeleteFormOwned(ownerID, formID string) (bool, error)

	AddResponse(r *models.Response) error
	ListResponsesByForm(formID string) ([]*models.Response, error)

	Close() error
}

var _ Store = (*memoryStore)(nil)
