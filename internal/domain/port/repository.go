package port

import (
	"context"

	"sprayer-backend/internal/domain/entity"
)

// AnalysisRepository интерфейс журнала анализов и опрыскиваний.
// Хранилище назначает идентификатор и время создания при вставке.
type AnalysisRepository interface {
	// SaveAnalysis сохраняет запись об анализе снимка
	SaveAnalysis(ctx context.Context, analysis *entity.ImageAnalysis) error

	// SaveSpray сохраняет запись о решении опрыскать
	SaveSpray(ctx context.Context, spray *entity.SprayLog) error
}
