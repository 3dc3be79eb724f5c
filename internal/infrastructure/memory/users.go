package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
)

type userRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]entity.User
	byUsername map[string]uuid.UUID
	order      []uuid.UUID
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{
		users:      make(map[uuid.UUID]entity.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return apperror.NewConflictError("username " + user.Username + " is already taken")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	r.order = append(r.order, user.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := r.users[id]
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return apperror.NewNotFoundError("User")
	}
	if existing.Username != user.Username {
		if _, taken := r.byUsername[user.Username]; taken {
			return apperror.NewConflictError("username " + user.Username + " is already taken")
		}
		delete(r.byUsername, existing.Username)
		r.byUsername[user.Username] = user.ID
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperror.NewNotFoundError("User")
	}
	delete(r.users, id)
	delete(r.byUsername, u.Username)
	for i, uid := range r.order {
		if uid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}
