//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
)

// GreenBiasClassifier — вариант локального классификатора на OpenCV.
// Семантика полностью совпадает с чистой Go-реализацией, отличается
// только способ декодирования и усреднения.
type GreenBiasClassifier struct {
	SampleSize int     // сторона квадрата, до которого приводится снимок
	NormScale  float64 // эмпирический делитель зелёного перекоса
	HealthyCut float64 // порог оценки, выше которого лист считается здоровым
}

// NewGreenBiasClassifier создаёт классификатор со стандартными порогами.
func NewGreenBiasClassifier() *GreenBiasClassifier {
	return &GreenBiasClassifier{
		SampleSize: 200,
		NormScale:  128.0,
		HealthyCut: 0.25,
	}
}

// Classify декодирует снимок, приводит его к SampleSize×SampleSize и
// решает по средним значениям каналов.
func (c *GreenBiasClassifier) Classify(ctx context.Context, imageData []byte) (*entity.Classification, error) {
	_ = ctx
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, fmt.Errorf("%w: imdecode failed", port.ErrUndecodableImage)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(c.SampleSize, c.SampleSize), 0, 0, gocv.InterpolationArea)

	// Mat хранит каналы в порядке BGR.
	mean := resized.Mean()
	b, g, r := mean.Val1, mean.Val2, mean.Val3

	return classifyMeans(r, g, b, c.NormScale, c.HealthyCut), nil
}

// Проверка реализации интерфейса
var _ port.LeafClassifier = (*GreenBiasClassifier)(nil)
