package port

import (
	"context"

	"sprayer-backend/internal/domain/entity"
)

// UserRepository интерфейс хранилища состояний операторов бота
type UserRepository interface {
	// Get возвращает оператора по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние оператора
	Save(ctx context.Context, user *entity.User) error
}
