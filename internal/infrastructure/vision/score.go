package vision

import (
	"encoding/json"
	"math"

	"sprayer-backend/internal/domain/entity"
)

// localOutput — сырой вывод локальной эвристики, сохраняется в Meta
// в том же виде, в каком посчитан.
type localOutput struct {
	Label         string  `json:"label"`
	InfectedProb  float64 `json:"infected_prob"`
	RawGreenScore float64 `json:"raw_green_score"`
}

// classifyMeans превращает средние значения каналов в вердикт.
// Здоровый лист заметно зеленее среднего: считаем "зелёный перекос",
// нормируем его и читаем как оценку здоровья.
func classifyMeans(r, g, b, normScale, healthyCut float64) *entity.Classification {
	greenBias := g - (r+b)/2
	if greenBias < 0 {
		greenBias = 0
	}
	score := math.Min(1, greenBias/normScale)

	var label string
	var infectedProb float64
	if score >= healthyCut {
		label = "Healthy"
		infectedProb = math.Max(0, 1-score)
	} else {
		label = "Infected"
		infectedProb = math.Min(1, 1-score)
	}

	meta, _ := json.Marshal(localOutput{
		Label:         label,
		InfectedProb:  infectedProb,
		RawGreenScore: score,
	})

	return &entity.Classification{
		Label:        label,
		InfectedProb: infectedProb,
		Meta:         string(meta),
	}
}
