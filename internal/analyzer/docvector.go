package analyzer

import "math"

// DocVector is the per-document output of spec.md §4.1 steps 4-6: the
// distinct terms of a document together with their lnc-normalized
// weights.
type DocVector struct {
	DocID  int
	Terms  []string           // distinct terms, in first-occurrence order
	Weight map[string]float64 // lnc weight per term
}

// Vectorize tokenizes, stems, and weights one document, following
// spec.md §4.1:
//  1. tf[t] = occurrence count of t
//  2. w[t] = 1 + log10(tf[t])                  (logarithmic tf, no idf)
//  3. w[t] /= sqrt(sum(w[t]^2))                 (cosine normalization)
func Vectorize(docID int, text string) DocVector {
	tokens := Terms(text)

	tf := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if tf[t] == 0 {
			order = append(order, t)
		}
		tf[t]++
	}

	weight := make(map[string]float64, len(order))
	var sumSquares float64
	for _, t := range order {
		w := 1 + math.Log10(float64(tf[t]))
		weight[t] = w
		sumSquares += w * w
	}

	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for _, t := range order {
			weight[t] /= norm
		}
	}

	return DocVector{DocID: docID, Terms: order, Weight: weight}
}
