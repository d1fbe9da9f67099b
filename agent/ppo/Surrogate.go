package ppo

import "github.com/samuelfneumann/fuzzppo/utils/floatutils"

// ratioEps keeps the probability ratio finite when the old probability
// of the selected action underflows to zero
const ratioEps = 1e-8

// TDTarget returns the one-step bootstrapped target r + γv(s')
func TDTarget(reward, gamma, nextValue float64) float64 {
	return reward + gamma*nextValue
}

// Advantage returns the one-step advantage estimate of a transition,
// the TD error of the current value estimate.
func Advantage(tdTarget, value float64) float64 {
	return tdTarget - value
}

// ClippedSurrogate returns the clipped surrogate objective
// min(ratio * A, clip(ratio, 1-ε, 1+ε) * A), which is maximized by the
// policy update, and whether the clipped term was selected. The policy
// loss is its negation.
func ClippedSurrogate(ratio, advantage, epsilon float64) (float64, bool) {
	surr1 := ratio * advantage
	surr2 := floatutils.Clip(ratio, 1-epsilon, 1+epsilon) * advantage
	if surr2 < surr1 {
		return surr2, true
	}
	return surr1, false
}
