// Package testkit generates seeded synthetic series with known dependency
// structure for the estimator tests: the ground truth is analytic, so the
// tests can check estimates against closed forms.
package testkit

import (
	"math"
	"math/rand"
)

// GaussianPair draws n samples of a bivariate standard normal with
// correlation rho. The true mutual information is -0.5*ln(1-rho^2) nats.
func GaussianPair(n int, rho float64, seed int64) (x, y []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float64, n)
	y = make([]float64, n)
	noise := math.Sqrt(1 - rho*rho)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		y[i] = rho*x[i] + noise*rng.NormFloat64()
	}
	return x, y
}

// IndependentPair draws two unrelated standard normal series
func IndependentPair(n int, seed int64) (x, y []float64) {
	return GaussianPair(n, 0, seed)
}

// Noise draws one standard normal series
func Noise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

// LaggedEcho builds a driver series x and an echo y where y[t+lag] depends
// on x[t] with the given noise amplitude. The first lag entries of y are
// pure noise.
func LaggedEcho(n, lag int, noiseAmp float64, seed int64) (x, y []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		y[i] = noiseAmp * rng.NormFloat64()
	}
	for t := 0; t+lag < n; t++ {
		y[t+lag] += x[t]
	}
	return x, y
}

// ConfoundedTriple builds z (noise), y = f(z) deterministic, and x
// independent of both: conditional MI of x and y given z is zero in the
// population.
func ConfoundedTriple(n int, seed int64) (x, y, z []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		z[i] = rng.NormFloat64()
		y[i] = math.Sin(z[i]) + 0.5*z[i]
	}
	return x, y, z
}

// CategoricalPair draws a discrete code series x in {0..levels-1} and a
// continuous y whose mean shifts with the code, plus unit noise.
func CategoricalPair(n, levels int, shift float64, seed int64) (x, y []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		code := rng.Intn(levels)
		x[i] = float64(code)
		y[i] = shift*float64(code) + rng.NormFloat64()
	}
	return x, y
}
