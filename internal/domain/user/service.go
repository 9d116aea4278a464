package user

import (
	"context"
	"strings"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

type Service struct {
	repo            UserRepository
	defaultStepGoal int
}

func NewService(repo UserRepository, defaultStepGoal int) *Service {
	return &Service{repo: repo, defaultStepGoal: defaultStepGoal}
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return envelope.Invalidf("name is required")
	}
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		if !strings.Contains(email, "@") {
			return envelope.Invalidf("email is invalid")
		}
		u.Email = &email
	}
	if u.Age != nil && (*u.Age < 0 || *u.Age > 150) {
		return envelope.Invalidf("age must be between 0 and 150")
	}
	if u.TargetSteps != nil && *u.TargetSteps <= 0 {
		return envelope.Invalidf("target_steps must be positive")
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetStepGoal(ctx context.Context, id int64, goal int) error {
	if goal <= 0 {
		return envelope.Invalidf("step_goal must be a positive integer")
	}
	return s.repo.SetStepGoal(ctx, id, goal)
}

// StepGoal returns the user's daily step target, or the configured default
// when the user has none.
func (s *Service) StepGoal(ctx context.Context, id int64) (int, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if u.TargetSteps != nil && *u.TargetSteps > 0 {
		return *u.TargetSteps, nil
	}
	return s.defaultStepGoal, nil
}
