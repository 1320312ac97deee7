package chromemdb

import "math"

// maximalMarginalRelevance picks k candidate indexes. The first pick is the
// candidate closest to the query; every following pick maximizes
// lambda*sim(query, c) - (1-lambda)*max(sim(c, picked)). Ties go to the
// earlier candidate, so lambda = 1 keeps the input order.
func maximalMarginalRelevance(query []float32, candidates [][]float32, k int, lambda float32) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	querySim := make([]float32, len(candidates))
	for i, c := range candidates {
		querySim[i] = cosine(query, c)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, len(candidates))
	// maxSim[i] is the highest similarity between candidate i and any pick so far
	maxSim := make([]float32, len(candidates))
	for i := range maxSim {
		maxSim[i] = float32(math.Inf(-1))
	}

	for len(selected) < k {
		best := -1
		var bestScore float32
		for i := range candidates {
			if picked[i] {
				continue
			}
			score := querySim[i]
			if len(selected) > 0 {
				score = lambda*querySim[i] - (1-lambda)*maxSim[i]
			}
			if best == -1 || score > bestScore {
				best, bestScore = i, score
			}
		}

		picked[best] = true
		selected = append(selected, best)
		for i, c := range candidates {
			if picked[i] {
				continue
			}
			if s := cosine(candidates[best], c); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}
	return selected
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
