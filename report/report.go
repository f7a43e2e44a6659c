// Package report aggregates stored results into trainee history, summary
// statistics, and the admin overview, and renders the per-user export.
package report

import (
	"context"
	"math"
	"sort"

	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/store"
)

// PassThreshold is the percentage from which an attempt counts as passed.
const PassThreshold = 70

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service { return &Service{store: st} }

// UserHistory lists a trainee's results most-recent-first. Ties on the
// completion timestamp keep their stored order.
func (s *Service) UserHistory(ctx context.Context, userID string) ([]model.QuizResult, error) {
	results, err := s.store.ResultsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})
	return results, nil
}

type UserSummary struct {
	Completed      int
	AveragePercent int
	BestPercent    int
	Passed         int
}

// UserSummary condenses a trainee's results: completed count, rounded mean
// of the per-attempt percentages, best percentage, and passed count.
func (s *Service) UserSummary(ctx context.Context, userID string) (UserSummary, error) {
	results, err := s.store.ResultsByUser(ctx, userID)
	if err != nil {
		return UserSummary{}, err
	}
	return summarize(results), nil
}

func summarize(results []model.QuizResult) UserSummary {
	sum := UserSummary{Completed: len(results)}
	if len(results) == 0 {
		return sum
	}
	total := 0.0
	for _, r := range results {
		pct := r.Percentage()
		total += float64(pct)
		if pct > sum.BestPercent {
			sum.BestPercent = pct
		}
		if pct >= PassThreshold {
			sum.Passed++
		}
	}
	sum.AveragePercent = int(math.Round(total / float64(len(results))))
	return sum
}

type Overview struct {
	Trainees       int
	Courses        int
	Quizzes        int
	AveragePercent int
	RecentLogins   []model.User
}

// Overview aggregates the platform dashboard figures: trainee/course/quiz
// counts, the global average percentage across all results, and the five
// most recent logins.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return Overview{}, err
	}
	courses, err := s.store.Courses(ctx)
	if err != nil {
		return Overview{}, err
	}
	quizzes, err := s.store.Quizzes(ctx)
	if err != nil {
		return Overview{}, err
	}
	results, err := s.store.Results(ctx)
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{Courses: len(courses), Quizzes: len(quizzes)}
	for _, u := range users {
		if u.Role == model.RoleTrainee {
			ov.Trainees++
		}
	}
	if len(results) > 0 {
		total := 0.0
		for _, r := range results {
			total += float64(r.Percentage())
		}
		ov.AveragePercent = int(math.Round(total / float64(len(results))))
	}

	active := []model.User{}
	for _, u := range users {
		if u.LastLogin != nil {
			active = append(active, u)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].LastLogin.After(*active[j].LastLogin)
	})
	if len(active) > 5 {
		active = active[:5]
	}
	ov.RecentLogins = active
	return ov, nil
}
