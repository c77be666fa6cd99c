package app

import (
	"context"
	"fmt"
	"log"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
	"sprayer-backend/internal/infrastructure/observability"
)

// AnalysisService прогоняет снимок через весь конвейер:
// классификация → решение → журнал → уведомление распылителя.
type AnalysisService struct {
	repo      port.AnalysisRepository
	remote    port.RemoteClassifier
	local     port.LeafClassifier
	sprayer   port.SprayerNotifier
	metrics   *observability.Metrics
	threshold float64
}

// AnalyzeInput — один входящий снимок.
type AnalyzeInput struct {
	NodeID   string // идентификатор узла, свободный текст, может быть пуст
	Filename string // имя файла снимка, может быть пусто
	Image    []byte // сырые байты снимка
}

// AnalyzeResult — итог конвейера, отдаётся вызывающему как есть.
type AnalyzeResult struct {
	ID           uint
	Label        string
	InfectedProb float64
	Decision     entity.Decision
}

// NewAnalysisService создаёт сервис анализа. Распылитель может быть nil,
// если эндпоинт не настроен; остальные зависимости обязательны.
func NewAnalysisService(
	repo port.AnalysisRepository,
	remote port.RemoteClassifier,
	local port.LeafClassifier,
	sprayer port.SprayerNotifier,
	metrics *observability.Metrics,
	threshold float64,
) *AnalysisService {
	return &AnalysisService{
		repo:      repo,
		remote:    remote,
		local:     local,
		sprayer:   sprayer,
		metrics:   metrics,
		threshold: threshold,
	}
}

// Analyze обрабатывает один снимок. Сбой удалённой модели поглощается
// локальным запасным путём; ошибка возвращается только при
// недекодируемом снимке или отказе журнала.
func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	cls, err := s.classify(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	analysis := &entity.ImageAnalysis{
		NodeID:        in.NodeID,
		ImageFilename: in.Filename,
		Label:         cls.Label,
		InfectedProb:  cls.InfectedProb,
		Meta:          cls.Meta,
	}
	if err := s.repo.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	s.metrics.Analyses.Inc()

	decision := Decide(cls.InfectedProb, s.threshold)
	if decision.Sprays() {
		s.metrics.Sprays.Inc()

		sprayLog := &entity.SprayLog{
			NodeID:     in.NodeID,
			Decision:   string(decision.Verdict),
			AmountML:   decision.AmountML,
			DurationMS: decision.DurationMS,
			Reason:     decision.Reason,
		}
		if err := s.repo.SaveSpray(ctx, sprayLog); err != nil {
			return nil, fmt.Errorf("save spray log: %w", err)
		}

		// Уведомление best-effort: ответ уже решён и записан,
		// недоступность узла не меняет итог запроса.
		if s.sprayer != nil {
			if err := s.sprayer.Notify(ctx, in.NodeID, decision.DurationMS); err != nil {
				log.Printf("Error contacting sprayer: %v", err)
				s.metrics.NotifyFailures.Inc()
			}
		}
	} else {
		s.metrics.Skips.Inc()
	}

	return &AnalyzeResult{
		ID:           analysis.ID,
		Label:        cls.Label,
		InfectedProb: cls.InfectedProb,
		Decision:     decision,
	}, nil
}

// classify пробует удалённую модель и при любом её исходе, кроме успеха,
// молча переключается на локальную эвристику.
func (s *AnalysisService) classify(ctx context.Context, image []byte) (*entity.Classification, error) {
	if s.remote != nil {
		res := s.remote.Classify(ctx, image)
		switch res.Kind {
		case port.RemoteOK:
			return res.Classification, nil
		case port.RemoteFailed:
			log.Printf("Remote classifier failed, falling back to local: %v", res.Err)
			s.metrics.RemoteFailures.Inc()
		case port.RemoteNotConfigured:
			// не настроено — сразу локальный путь, сеть не трогали
		}
	}

	s.metrics.LocalFallbacks.Inc()
	return s.local.Classify(ctx, image)
}
