package user

import "context"

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	SetStepGoal(ctx context.Context, id int64, goal int) error
}
