package storage

import (
	"context"
	"sync"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
)

// MemoryUserRepository — in-memory хранилище состояний операторов бота.
// Состояние диалога не переживает рестарт, и это нормально: оператор
// просто начнёт с /check заново.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт пустое хранилище.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]*entity.User)}
}

// Get возвращает оператора по ID, создаёт нового если не найден.
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return user, nil
	}

	newUser := entity.NewUser(userID, chatID)
	r.mu.Lock()
	r.users[userID] = newUser
	r.mu.Unlock()

	return newUser, nil
}

// Save сохраняет состояние оператора.
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
