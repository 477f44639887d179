package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	a := Hash("x^var - nx + var = var")
	b := Hash("x^var - nx + var = var")
	c := Hash("x^var + nx - var = var")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsZero())
	assert.Len(t, a.String(), 32)
}

func TestAnalyze(t *testing.T) {
	first := Analyze("Решите уравнение:  x^2 - 7x + 12 = 0")
	second := Analyze("решите  уравнение: x^2 - 3x + 2 = 0")

	assert.Equal(t, "решите уравнение: x^2 - 7x + 12 = 0", first.Normalized)
	assert.Equal(t, first.Skeleton, second.Skeleton)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.Normalized, second.Normalized)
}
