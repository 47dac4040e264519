package usecase

import (
	"context"
	"fmt"
	"math"
)

// EvalCase is one labelled question. Cases that share a Session run in
// order against the same conversation; an empty Session gets a fresh one.
type EvalCase struct {
	Query    string   `yaml:"query" json:"query"`
	Session  string   `yaml:"session,omitempty" json:"session,omitempty"`
	Relevant []string `yaml:"relevant" json:"relevant"` // item titles
	Intent   string   `yaml:"intent,omitempty" json:"intent,omitempty"`
}

// EvalOutcome is how the engine did on one case.
type EvalOutcome struct {
	Case           EvalCase `json:"case"`
	Retrieved      []string `json:"retrieved"`
	Intent         string   `json:"intent"`
	Precision      float64  `json:"precision"`
	Recall         float64  `json:"recall"`
	ReciprocalRank float64  `json:"reciprocal_rank"`
	NDCG           float64  `json:"ndcg"`
}

// EvalReport averages the outcomes. IntentAccuracy only counts cases that
// name an expected intent.
type EvalReport struct {
	Outcomes       []EvalOutcome `json:"outcomes"`
	MeanPrecision  float64       `json:"mean_precision"`
	MeanRecall     float64       `json:"mean_recall"`
	MRR            float64       `json:"mrr"`
	MeanNDCG       float64       `json:"mean_ndcg"`
	IntentAccuracy float64       `json:"intent_accuracy"`
	IntentCases    int           `json:"intent_cases"`
}

// Evaluate runs every case through Search and scores the top k titles.
// Sessions used by the run are reset afterwards.
func (e *Engine) Evaluate(ctx context.Context, cases []EvalCase, k int) (EvalReport, error) {
	if k <= 0 {
		k = e.cfg.Search.Limit
	}

	var report EvalReport
	used := make(map[string]struct{})
	defer func() {
		for id := range used {
			_ = e.ResetSession(context.Background(), id)
		}
	}()

	intentHits := 0
	for i, c := range cases {
		session := c.Session
		if session == "" {
			session = fmt.Sprintf("eval-%d", i)
		}
		session = "eval:" + session
		used[session] = struct{}{}

		result, err := e.Search(ctx, session, c.Query)
		if err != nil {
			return report, fmt.Errorf("case %d (%q): %w", i, c.Query, err)
		}

		var retrieved []string
		for _, r := range result.Results {
			if len(retrieved) == k {
				break
			}
			retrieved = append(retrieved, r.Item.Title)
		}

		out := EvalOutcome{
			Case:      c,
			Retrieved: retrieved,
			Intent:    result.Intent,
			Precision: PrecisionAtK(retrieved, c.Relevant),
			Recall:    RecallAtK(retrieved, c.Relevant),
			NDCG:      NDCG(gains(retrieved, c.Relevant), idealGains(len(c.Relevant), k)),
		}
		if len(c.Relevant) > 0 {
			out.ReciprocalRank = ReciprocalRank(retrieved, c.Relevant[0])
		}
		if c.Intent != "" {
			report.IntentCases++
			if c.Intent == result.Intent {
				intentHits++
			}
		}

		report.Outcomes = append(report.Outcomes, out)
		report.MeanPrecision += out.Precision
		report.MeanRecall += out.Recall
		report.MRR += out.ReciprocalRank
		report.MeanNDCG += out.NDCG
	}

	if n := float64(len(report.Outcomes)); n > 0 {
		report.MeanPrecision /= n
		report.MeanRecall /= n
		report.MRR /= n
		report.MeanNDCG /= n
	}
	if report.IntentCases > 0 {
		report.IntentAccuracy = float64(intentHits) / float64(report.IntentCases)
	}
	return report, nil
}

func PrecisionAtK(retrieved, relevant []string) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(countRelevant(retrieved, relevant)) / float64(len(retrieved))
}

func RecallAtK(retrieved, relevant []string) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(countRelevant(retrieved, relevant)) / float64(len(relevant))
}

func countRelevant(retrieved, relevant []string) int {
	relevantSet := make(map[string]bool, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = true
	}
	hits := 0
	for _, r := range retrieved {
		if relevantSet[r] {
			hits++
		}
	}
	return hits
}

func ReciprocalRank(retrieved []string, relevant string) float64 {
	for i, r := range retrieved {
		if r == relevant {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// NDCG compares graded gains in ranked order with the ideal ordering.
func NDCG(scores, ideal []float64) float64 {
	idcg := dcg(ideal)
	if idcg == 0 {
		return 0
	}
	return dcg(scores) / idcg
}

func dcg(scores []float64) float64 {
	total := 0.0
	for i, score := range scores {
		total += score / math.Log2(float64(i+2))
	}
	return total
}

func gains(retrieved, relevant []string) []float64 {
	relevantSet := make(map[string]bool, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = true
	}
	out := make([]float64, len(retrieved))
	for i, r := range retrieved {
		if relevantSet[r] {
			out[i] = 1
		}
	}
	return out
}

func idealGains(relevant, k int) []float64 {
	if relevant > k {
		relevant = k
	}
	out := make([]float64, relevant)
	for i := range out {
		out[i] = 1
	}
	return out
}
