package models

import "time"

// User is an authenticated form owner. The password hash never leaves
// the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Question types. Multiple-choice questions carry at least two options;
// text questions ignore Options entirely.
const (
	QuestionText           = "text"
	QuestionMultipleChoice = "multiple-choice"
)

// Question is one survey item embedded in a Form. IDs are opaque
// strings unique within their form.
type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// Form is an owner-authored survey of 3 to 5 questions with an
// active/inactive gate on public submission.
type Form struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Answer pairs a question id with the respondent's text. The question
// id is stored verbatim; it is matched against the form's questions
// only at aggregation time.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Response is one anonymous submission against a Form. Responses are
// written once and never mutated.
type Response struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}
