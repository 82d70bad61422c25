package vectorstore

import "math"

// MMR greedily selects up to k results, trading relevance to query against
// similarity to results already selected. diversity 0 ranks purely by relevance,
// 1 purely by dissimilarity. Results without vectors fall back to their store
// score for relevance and count as unrelated to everything else.
func MMR(query []float32, results []SearchResult, k int, diversity float64) []SearchResult {
	if k <= 0 || len(results) == 0 {
		return nil
	}
	diversity = math.Max(0, math.Min(1, diversity))
	lambda := 1 - diversity

	relevance := make([]float64, len(results))
	for i, r := range results {
		if len(query) > 0 && len(r.Vec) == len(query) {
			relevance[i] = Cosine(query, r.Vec)
		} else {
			relevance[i] = float64(r.Score)
		}
	}

	selected := make([]int, 0, min(k, len(results)))
	used := make([]bool, len(results))

	for len(selected) < k && len(selected) < len(results) {
		best := -1
		bestScore := math.Inf(-1)
		for i := range results {
			if used[i] {
				continue
			}
			redundancy := 0.0
			for _, j := range selected {
				if sim := Cosine(results[i].Vec, results[j].Vec); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		used[best] = true
		selected = append(selected, best)
	}

	out := make([]SearchResult, len(selected))
	for i, idx := range selected {
		out[i] = results[idx]
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when it is undefined.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
