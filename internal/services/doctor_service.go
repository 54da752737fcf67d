package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

// CategoryAll disables the specialization filter.
const CategoryAll = "All"

var categories = []string{
	"Cardiologist",
	"Dentist",
	"Dermatologist",
	"Pediatrician",
	"Neurologist",
	"Orthopedic",
	"General",
	"Eye Specialist",
}

type DoctorService struct {
	store *session.Store
}

func NewDoctorService(store *session.Store) *DoctorService {
	return &DoctorService{store: store}
}

func (s *DoctorService) Categories() []string {
	return append([]string{}, categories...)
}

// ListDoctors filters by a case-insensitive substring of name or
// specialization, then by exact specialization unless category is All.
func (s *DoctorService) ListDoctors(ctx context.Context, snap session.Snapshot, query, category string) ([]models.Doctor, error) {
	doctors, err := snap.Source.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	if err := settle(s.store, snap); err != nil {
		return nil, err
	}
	return filterDoctors(doctors, query, category), nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, snap session.Snapshot, id string) (*models.Doctor, error) {
	doc, err := snap.Source.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, settle(s.store, snap)
}

func filterDoctors(doctors []models.Doctor, query, category string) []models.Doctor {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if query != "" &&
			!strings.Contains(strings.ToLower(d.FullName), query) &&
			!strings.Contains(strings.ToLower(d.Specialization), query) {
			continue
		}
		if category != "" && category != CategoryAll && d.Specialization != category {
			continue
		}
		out = append(out, d)
	}
	return out
}
