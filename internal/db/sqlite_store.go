package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/formloop/formloop/internal/api"
	"github.com/formloop/formloop/internal/models"
)

func init() {
	// modernc registers itself as "sqlite"; sqlx only knows the cgo
	// driver's name out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore implements api.Store on a single SQLite file. Questions
// and answers are stored as JSON text; timestamps as RFC 3339 strings.
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path, applies pragmas and
// migrations, and returns a ready store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if err := RunMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ api.Store = (*SQLiteStore)(nil)

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// timeLayout keeps fractional seconds fixed-width so the stored
// strings sort lexically in timestamp order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Printf("sqlite store: parse time %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// --- Users ---

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash []byte `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    parseTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) AddUser(u *models.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, formatTime(u.CreatedAt))
	return err
}

func (s *SQLiteStore) FindUserByEmail(email string) (*models.User, error) {
	var row userRow
	err := s.db.Get(&row, `SELECT * FROM users WHERE email = ? COLLATE NOCASE`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *SQLiteStore) FindUserByID(id string) (*models.User, error) {
	var row userRow
	err := s.db.Get(&row, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// --- Forms ---

type formRow struct {
	ID          string `db:"id"`
	OwnerID     string `db:"owner_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Questions   string `db:"questions"`
	IsActive    int64  `db:"is_active"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r formRow) toModel() *models.Form {
	var questions []models.Question
	if err := json.Unmarshal([]byte(r.Questions), &questions); err != nil {
		log.Printf("sqlite store: decode questions for form %s: %v", r.ID, err)
	}
	return &models.Form{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Questions:   questions,
		IsActive:    r.IsActive != 0,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (s *SQLiteStore) AddForm(f *models.Form) error {
	questions, err := encodeJSON(f.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO forms (id, owner_id, title, description, questions, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Title, f.Description, questions, boolToInt64(f.IsActive),
		formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	return err
}

func (s *SQLiteStore) GetForm(id string) (*models.Form, error) {
	var row formRow
	err := s.db.Get(&row, `SELECT * FROM forms WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *SQLiteStore) GetFormOwned(ownerID, formID string) (*models.Form, error) {
	var row formRow
	err := s.db.Get(&row, `SELECT * FROM forms WHERE id = ? AND owner_id = ?`, formID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *SQLiteStore) ListFormsByOwner(ownerID string) ([]*models.Form, error) {
	var rows []formRow
	if err := s.db.Select(&rows, `SELECT * FROM forms WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID); err != nil {
		return nil, err
	}
	out := make([]*models.Form, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// UpdateFormOwned matches id and owner in one conditional UPDATE so a
// concurrent owner change cannot slip between a check and the write.
func (s *SQLiteStore) UpdateFormOwned(ownerID string, f *models.Form) (*models.Form, error) {
	questions, err := encodeJSON(f.Questions)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		`UPDATE forms SET title = ?, description = ?, questions = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		f.Title, f.Description, questions, boolToInt64(f.IsActive), formatTime(f.UpdatedAt),
		f.ID, ownerID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetForm(f.ID)
}

func (s *SQLiteStore) DeleteFormOwned(ownerID, formID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM forms WHERE id = ? AND owner_id = ?`, formID, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Responses ---

type responseRow struct {
	ID          string `db:"id"`
	FormID      string `db:"form_id"`
	Answers     string `db:"answers"`
	SubmittedAt string `db:"submitted_at"`
	IPAddress   string `db:"ip_address"`
	UserAgent   string `db:"user_agent"`
}

func (r responseRow) toModel() *models.Response {
	var answers []models.Answer
	if err := json.Unmarshal([]byte(r.Answers), &answers); err != nil {
		log.Printf("sqlite store: decode answers for response %s: %v", r.ID, err)
	}
	return &models.Response{
		ID:          r.ID,
		FormID:      r.FormID,
		Answers:     answers,
		SubmittedAt: parseTime(r.SubmittedAt),
		IPAddress:   r.IPAddress,
		UserAgent:   r.UserAgent,
	}
}

func (s *SQLiteStore) AddResponse(r *models.Response) error {
	answers, err := encodeJSON(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO responses (id, form_id, answers, submitted_at, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.FormID, answers, formatTime(r.SubmittedAt), r.IPAddress, r.UserAgent)
	return err
}

func (s *SQLiteStore) ListResponsesByForm(formID string) ([]*models.Response, error) {
	var rows []responseRow
	if err := s.db.Select(&rows, `SELECT * FROM responses WHERE form_id = ? ORDER BY submitted_at DESC, id DESC`, formID); err != nil {
		return nil, err
	}
	out := make([]*models.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}
