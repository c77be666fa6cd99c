package port

import "context"

// SprayerNotifier интерфейс уведомления физического распылителя.
// Уведомление best-effort: вызывающий логирует ошибку и продолжает,
// повторных попыток нет.
type SprayerNotifier interface {
	// Notify передаёт узлу команду опрыскивания заданной длительности
	Notify(ctx context.Context, nodeID string, durationMS int) error
}
