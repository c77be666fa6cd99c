//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"sprayer-backend/internal/domain/port"
)

func encodePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClassify_GreenLeafIsHealthy(t *testing.T) {
	cls := NewGreenBiasClassifier()

	// Чисто зелёный кадр: перекос 200, оценка упирается в 1.
	out, err := cls.Classify(context.Background(), encodePNG(t, color.RGBA{G: 200, A: 255}))
	require.NoError(t, err)
	require.Equal(t, "Healthy", out.Label)
	require.InDelta(t, 0.0, out.InfectedProb, 1e-9)
	require.Contains(t, out.Meta, "raw_green_score")
}

func TestClassify_RedLeafIsInfected(t *testing.T) {
	cls := NewGreenBiasClassifier()

	out, err := cls.Classify(context.Background(), encodePNG(t, color.RGBA{R: 200, A: 255}))
	require.NoError(t, err)
	require.Equal(t, "Infected", out.Label)
	require.InDelta(t, 1.0, out.InfectedProb, 1e-9)
}

func TestClassify_ModeratelyGreen(t *testing.T) {
	cls := NewGreenBiasClassifier()

	// Перекос 40 → оценка 0.3125 ≥ 0.25 → Healthy с вероятностью 0.6875.
	out, err := cls.Classify(context.Background(), encodePNG(t, color.RGBA{G: 40, A: 255}))
	require.NoError(t, err)
	require.Equal(t, "Healthy", out.Label)
	require.InDelta(t, 0.6875, out.InfectedProb, 1e-9)
}

func TestClassify_Deterministic(t *testing.T) {
	cls := NewGreenBiasClassifier()
	data := encodePNG(t, color.RGBA{R: 30, G: 90, B: 10, A: 255})

	first, err := cls.Classify(context.Background(), data)
	require.NoError(t, err)
	second, err := cls.Classify(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestClassify_ProbabilityAlwaysBounded(t *testing.T) {
	cls := NewGreenBiasClassifier()
	colors := []color.RGBA{
		{A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{G: 255, A: 255},
		{R: 120, G: 200, B: 40, A: 255},
		{R: 10, G: 20, B: 200, A: 255},
	}
	for _, c := range colors {
		out, err := cls.Classify(context.Background(), encodePNG(t, c))
		require.NoError(t, err)
		require.GreaterOrEqual(t, out.InfectedProb, 0.0)
		require.LessOrEqual(t, out.InfectedProb, 1.0)
	}
}

func TestClassify_UndecodableBytes(t *testing.T) {
	cls := NewGreenBiasClassifier()

	_, err := cls.Classify(context.Background(), []byte("definitely not an image"))
	require.Error(t, err)
	require.ErrorIs(t, err, port.ErrUndecodableImage)
}
