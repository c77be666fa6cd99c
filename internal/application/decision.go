package app

import (
	"fmt"
	"math"

	"sprayer-backend/internal/domain/entity"
)

// Насос выдаёт фиксированные 10 мл в секунду.
const pumpRateMLPerSec = 10.0

// Decide применяет пороговую политику к вероятности заражения.
// Чистая функция без ввода-вывода; равенство порогу означает опрыскивание.
func Decide(infectedProb, threshold float64) entity.Decision {
	if infectedProb >= threshold {
		// Доза растёт линейно с вероятностью: от 5+15·порог до 20 мл.
		amountML := math.Round((5.0+15.0*infectedProb)*100) / 100
		return entity.Decision{
			Verdict:    entity.VerdictSpray,
			AmountML:   amountML,
			DurationMS: int(math.Floor(amountML / pumpRateMLPerSec * 1000)),
			Reason:     fmt.Sprintf("infection_prob=%.2f >= threshold %g", infectedProb, threshold),
		}
	}

	return entity.Decision{
		Verdict: entity.VerdictSkip,
		Reason:  fmt.Sprintf("infection_prob=%.2f < threshold %g", infectedProb, threshold),
	}
}
