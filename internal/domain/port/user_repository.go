package port

import (
	"context"

	"hive-vision/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// SaveVerdict запоминает результат проверки улья и возвращает пользователя в меню
	SaveVerdict(ctx context.Context, userID int64, verdict *entity.HealthVerdict) error
}
