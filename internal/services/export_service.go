package services

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/formloop/formloop/internal/models"
)

// ExportStore abstracts the reads needed for the CSV export.
type ExportStore interface {
	GetFormOwned(ownerID, formID string) (*models.Form, error)
	ListResponsesByForm(formID string) ([]*models.Response, error)
}

type ExportResult struct {
	Filename    string
	ContentType string
	Form        *models.Form
	Responses   []*models.Response
}

type ExportService struct {
	store ExportStore
	now   func() time.Time
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportCSV resolves the form and its responses under the same
// existence-hiding ownership rule as the dashboard. The caller streams
// the rows with WriteCSV.
func (s *ExportService) ExportCSV(ownerID, formID string) (*ExportResult, error) {
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
	return &ExportResult{
		Filename:    ExportFilename(form.Title, s.now()),
		ContentType: "text/csv",
		Form:        form,
		Responses:   responses,
	}, nil
}

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename derives the attachment name from the form title:
// non-alphanumerics become underscores, suffixed with the export date.
func ExportFilename(title string, now time.Time) string {
	return filenameSanitizer.ReplaceAllString(title, "_") + "_responses_" + now.UTC().Format("2006-01-02") + ".csv"
}

// WriteCSV streams the export in one pass over the responses. Header
// columns follow the form's question order using the question text.
// Every answer cell is wrapped in double quotes with embedded quotes
// doubled; quoting alone covers embedded commas. A skipped question
// yields an empty quoted cell.
func WriteCSV(w io.Writer, form *models.Form, responses []*models.Response) error {
	header := make([]string, 0, 2+len(form.Questions))
	header = append(header, "Submission Date", "IP Address")
	for _, q := range form.Questions {
		header = append(header, q.Question)
	}
	if _, err := io.WriteString(w, strings.Join(header, ",")); err != nil {
		return err
	}

	for _, r := range responses {
		ip := r.IPAddress
		if ip == "" {
			ip = "Unknown"
		}
		row := make([]string, 0, 2+len(form.Questions))
		row = append(row, r.SubmittedAt.UTC().Format(time.RFC3339), ip)
		for _, q := range form.Questions {
			text := ""
			for _, a := range r.Answers {
				if a.QuestionID == q.ID {
					text = a.Answer
					break
				}
			}
			row = append(row, `"`+strings.ReplaceAll(text, `"`, `""`)+`"`)
		}
		if _, err := io.WriteString(w, "\n"+strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return nil
}
