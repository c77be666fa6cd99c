//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
)

// GreenBiasClassifier — дешёвый детерминированный классификатор листа
// без сети и без OpenCV. Это запасной путь на случай недоступности
// удалённой модели, точность заведомо низкая.
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
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUndecodableImage, err)
	}

	r, g, b := c.channelMeans(img)
	return classifyMeans(r, g, b, c.NormScale, c.HealthyCut), nil
}

// channelMeans выбирает пиксели по сетке SampleSize×SampleSize методом
// ближайшего соседа и усредняет каналы. Размер выборки фиксирован,
// поэтому стоимость не зависит от размера снимка.
func (c *GreenBiasClassifier) channelMeans(img image.Image) (r, g, b float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	n := c.SampleSize

	var sumR, sumG, sumB uint64
	for y := 0; y < n; y++ {
		srcY := bounds.Min.Y + y*h/n
		for x := 0; x < n; x++ {
			srcX := bounds.Min.X + x*w/n
			pr, pg, pb, _ := img.At(srcX, srcY).RGBA()
			sumR += uint64(pr >> 8)
			sumG += uint64(pg >> 8)
			sumB += uint64(pb >> 8)
		}
	}

	total := float64(n * n)
	return float64(sumR) / total, float64(sumG) / total, float64(sumB) / total
}

// Проверка реализации интерфейса
var _ port.LeafClassifier = (*GreenBiasClassifier)(nil)
