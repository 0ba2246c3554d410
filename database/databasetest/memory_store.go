// Package databasetest provides an in-memory database.UserStore for tests.
package databasetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryUserStore mirrors MongoUserStore semantics: unique emails, reads
// without the password hash, paired reset fields.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]models.User
	order []bson.ObjectID

	// Err, when set, is returned by every call.
	Err error
	// ClearResetErr, when set, is returned by ClearResetToken only.
	ClearResetErr error
}

var _ database.UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[bson.ObjectID]models.User)}
}

// Get returns the stored record including secrets.
func (s *MemoryUserStore) Get(id bson.ObjectID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.emailTaken(user.Email, bson.NilObjectID) {
		return database.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id }, false)
}

func (s *MemoryUserStore) FindByIDWithPassword(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id }, true)
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return s.find(func(u models.User) bool { return u.Email == email }, false)
}

func (s *MemoryUserStore) FindByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return s.find(func(u models.User) bool { return u.Email == email }, true)
}

func (s *MemoryUserStore) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return s.find(func(u models.User) bool {
		return u.ResetPasswordToken == tokenHash && u.HasPendingReset(now)
	}, false)
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.User, 0, len(s.users))
	for _, id := range s.order {
		if u, ok := s.users[id]; ok {
			out = append(out, public(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryUserStore) Update(_ context.Context, id bson.ObjectID, patch models.UserPatch) (*models.User, error) {
	return s.mutate(id, func(u *models.User) error {
		if patch.Email != nil && s.emailTaken(*patch.Email, id) {
			return database.ErrDuplicateEmail
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		return nil
	})
}

func (s *MemoryUserStore) SetPassword(_ context.Context, id bson.ObjectID, passwordHash string) error {
	_, err := s.mutate(id, func(u *models.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (s *MemoryUserStore) SetResetToken(_ context.Context, id bson.ObjectID, tokenHash string, expire time.Time) error {
	_, err := s.mutate(id, func(u *models.User) error {
		exp := expire.UTC()
		u.ResetPasswordToken = tokenHash
		u.ResetPasswordExpire = &exp
		return nil
	})
	return err
}

func (s *MemoryUserStore) ClearResetToken(_ context.Context, id bson.ObjectID) error {
	_, err := s.mutate(id, func(u *models.User) error {
		if s.ClearResetErr != nil {
			return s.ClearResetErr
		}
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
		return nil
	})
	return err
}

func (s *MemoryUserStore) CompleteReset(_ context.Context, id bson.ObjectID, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) error {
		if u.ResetPasswordToken != tokenHash || !u.HasPendingReset(now) {
			return database.ErrUserNotFound
		}
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
		return nil
	})
}

func (s *MemoryUserStore) SetAvatar(_ context.Context, id bson.ObjectID, avatar models.Avatar) (*models.User, error) {
	return s.mutate(id, func(u *models.User) error {
		a := avatar
		u.Avatar = &a
		return nil
	})
}

func (s *MemoryUserStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[id]; !ok {
		return database.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) find(match func(models.User) bool, withPassword bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, id := range s.order {
		u, ok := s.users[id]
		if !ok || !match(u) {
			continue
		}
		if !withPassword {
			u = public(u)
		}
		return &u, nil
	}
	return nil, database.ErrUserNotFound
}

func (s *MemoryUserStore) mutate(id bson.ObjectID, fn func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	out := public(u)
	return &out, nil
}

func (s *MemoryUserStore) emailTaken(email string, except bson.ObjectID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func public(u models.User) models.User {
	u.PasswordHash = ""
	return u
}
