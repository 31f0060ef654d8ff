package store

import (
	"context"

	"github.com/google/uuid"
)

// Directory bundles the existence checks the rating service needs.
type Directory struct {
	Users *UserStore
	Jobs  *JobStore
}

func NewDirectory(users *UserStore, jobs *JobStore) *Directory {
	return &Directory{Users: users, Jobs: jobs}
}

func (d *Directory) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return d.Users.Exists(ctx, userID)
}

func (d *Directory) JobExists(ctx context.Context, jobID uuid.UUID) (bool, error) {
	return d.Jobs.Exists(ctx, jobID)
}
