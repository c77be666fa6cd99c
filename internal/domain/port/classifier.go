package port

import (
	"context"
	"errors"

	"sprayer-backend/internal/domain/entity"
)

// ErrUndecodableImage возвращается, когда байты снимка не удаётся
// декодировать. Это единственная ошибка классификации, которая
// доходит до клиента.
var ErrUndecodableImage = errors.New("image cannot be decoded")

// LeafClassifier интерфейс локального классификатора листа
type LeafClassifier interface {
	// Classify анализирует снимок и возвращает нормализованный результат
	Classify(ctx context.Context, imageData []byte) (*entity.Classification, error)
}

// RemoteResultKind — вариант исхода обращения к удалённой модели.
type RemoteResultKind int

const (
	RemoteOK            RemoteResultKind = iota // модель ответила корректно
	RemoteNotConfigured                         // эндпоинт или токен не заданы
	RemoteFailed                                // сеть, статус или формат ответа
)

// RemoteResult — явный тегированный исход вместо перехвата всех ошибок
// подряд: резолвер переключается на локальный путь по варианту, а не
// по факту любой ошибки.
type RemoteResult struct {
	Kind           RemoteResultKind
	Classification *entity.Classification // заполнен только при RemoteOK
	Err            error                  // заполнен только при RemoteFailed
}

// RemoteClassifier интерфейс клиента удалённой модели
type RemoteClassifier interface {
	// Classify отправляет снимок модели; сбой не является ошибкой
	// вызова, а кодируется в RemoteResult
	Classify(ctx context.Context, imageData []byte) RemoteResult
}
