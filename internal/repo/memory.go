package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process store with the same contract as Store, including the
// unique email and sparse unique external_id constraints. Selected with MONGO_URI=memory://.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
	tasks map[primitive.ObjectID]domain.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]domain.User),
		tasks: make(map[primitive.ObjectID]domain.Task),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) findUser(match func(u *domain.User) bool) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(&u) {
			cp := u
			return &cp
		}
	}
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.findUser(func(u *domain.User) bool { return u.Email == email }), nil
}

func (m *MemoryStore) FindUserByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, nil
	}
	return m.findUser(func(u *domain.User) bool { return u.ExternalID == externalID }), nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[oid]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// conflicts must be called with mu held.
func (m *MemoryStore) conflicts(self primitive.ObjectID, email, externalID string) bool {
	for id, u := range m.users {
		if id == self {
			continue
		}
		if u.Email == email || (externalID != "" && u.ExternalID == externalID) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts(primitive.NilObjectID, u.Email, u.ExternalID) {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) LinkExternalID(_ context.Context, id primitive.ObjectID, provider, externalID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.conflicts(id, u.Email, externalID) {
		return nil, ErrDuplicate
	}
	u.ExternalID = externalID
	u.Provider = provider
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return &u, nil
}

// DeleteUser exists for tests; nothing in the service deletes users.
func (m *MemoryStore) DeleteUser(id primitive.ObjectID) {
	m.mu.Lock()
	delete(m.users, id)
	m.mu.Unlock()
}

func (m *MemoryStore) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MemoryStore) CreateTask(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now, now
	m.tasks[t.ID] = *t
	return nil
}

func (m *MemoryStore) FindTaskByID(_ context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[oid]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStore) ListTasksByOwner(_ context.Context, owner primitive.ObjectID) ([]domain.Task, error) {
	m.mu.RLock()
	out := []domain.Task{}
	for _, t := range m.tasks {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()
	// ObjectIDs grow monotonically within a process, which breaks created_at ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cur.Title, cur.Description, cur.Status, cur.UpdatedAt = t.Title, t.Description, t.Status, t.UpdatedAt
	m.tasks[t.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
