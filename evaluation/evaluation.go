// Package evaluation computes retrieval-style precision/recall metrics over
// a completed classification result and an expert-label ground truth. It is
// pure: no store access, no clock, no I/O.
//
// Note on the false-positive count: fp is the number of distinct predicted
// classes minus the true positive, so a wider top-k candidate list inflates
// fp even when none of the extra candidates is wrong in any other sense.
// This matches the behavior clients already depend on and is kept as is.
package evaluation

import (
	"math"

	"github.com/Zhilg/Dvizhenie/models"
)

// Threshold is the fixed acceptance bar attached to every report.
const Threshold = 0.8

// Metric selects which aggregate a report is built around.
type Metric string

const (
	Precision Metric = "precision"
	Recall    Metric = "recall"
)

// FileMetrics is the per-document breakdown. Exactly one of the
// PrecisionValue/RecallValue fields is set, matching the requested metric.
type FileMetrics struct {
	File              string              `json:"file"`
	ExpertLabel       string              `json:"expert_label"`
	SystemPredictions []models.Prediction `json:"system_predictions"`
	TP                int                 `json:"tp"`
	FP                int                 `json:"fp"`
	FN                int                 `json:"fn"`
	PrecisionValue    *float64            `json:"precision,omitempty"`
	RecallValue       *float64            `json:"recall,omitempty"`
	MatchFound        bool                `json:"match_found"`
}

// Metrics is the aggregate section of a report.
type Metrics struct {
	TotalFiles     int      `json:"total_files"`
	TotalTP        int      `json:"total_tp"`
	TotalFP        int      `json:"total_fp"`
	TotalFN        int      `json:"total_fn"`
	PrecisionValue *float64 `json:"precision,omitempty"`
	RecallValue    *float64 `json:"recall,omitempty"`
}

// Summary restates the aggregate in client-friendly terms.
type Summary struct {
	FilesWithMatches    int      `json:"files_with_matches"`
	FilesWithoutMatches int      `json:"files_without_matches"`
	AveragePrecision    *float64 `json:"average_precision,omitempty"`
	AverageRecall       *float64 `json:"average_recall,omitempty"`
}

// Report is the full evaluation response body. ClassificationJobID and
// ClassificationType are filled in by the handler, which knows the job and
// the selector the client sent.
type Report struct {
	Metrics             Metrics       `json:"metrics"`
	FileLevelMetrics    []FileMetrics `json:"file_level_metrics"`
	Summary             Summary       `json:"summary"`
	ClassificationJobID string        `json:"classification_job_id"`
	EvaluationType      Metric        `json:"evaluation_type"`
	ClassificationType  string        `json:"classification_type"`
	Threshold           float64       `json:"threshold"`
	ThresholdMet        bool          `json:"threshold_met"`
}

// document is the shape both result kinds reduce to before scoring.
type document struct {
	file        string
	expert      string
	predictions []models.Prediction
}

// EvaluateGRNTI scores a GRNTI classification result. The expert label
// travels inside each per-file record.
func EvaluateGRNTI(result *models.GRNTIResult, metric Metric) *Report {
	docs := make([]document, 0, len(result.Files))
	for _, f := range result.Files {
		docs = append(docs, document{
			file:        f.File,
			expert:      f.ExpertGRNTICode,
			predictions: f.Top5Predictions,
		})
	}
	return evaluate(docs, metric)
}

// EvaluateCluster scores a correspondence-table result against an external
// filename-to-cluster ground truth. expertLabel must return the unknown
// sentinel for unlabelled files; the sentinel never matches a prediction,
// which makes such documents guaranteed false negatives.
func EvaluateCluster(table *models.CorrespondenceTable, expertLabel func(string) string, metric Metric) *Report {
	docs := make([]document, 0, len(table.Files))
	for _, f := range table.Files {
		docs = append(docs, document{
			file:        f.File,
			expert:      expertLabel(f.File),
			predictions: f.Predictions,
		})
	}
	return evaluate(docs, metric)
}

func evaluate(docs []document, metric Metric) *Report {
	var totalTP, totalFP, totalFN int
	files := make([]FileMetrics, 0, len(docs))

	for _, doc := range docs {
		tp, fp, fn := scoreDocument(doc.expert, doc.predictions)
		totalTP += tp
		totalFP += fp
		totalFN += fn

		fm := FileMetrics{
			File:              doc.file,
			ExpertLabel:       doc.expert,
			SystemPredictions: doc.predictions,
			TP:                tp,
			FP:                fp,
			FN:                fn,
			MatchFound:        tp > 0,
		}
		switch metric {
		case Recall:
			fm.RecallValue = ptr(ratio(tp, tp+fn))
		default:
			fm.PrecisionValue = ptr(ratio(tp, tp+fp))
		}
		files = append(files, fm)
	}

	report := &Report{
		Metrics: Metrics{
			TotalFiles: len(docs),
			TotalTP:    totalTP,
			TotalFP:    totalFP,
			TotalFN:    totalFN,
		},
		FileLevelMetrics: files,
		Summary: Summary{
			FilesWithMatches:    totalTP,
			FilesWithoutMatches: len(docs) - totalTP,
		},
		EvaluationType: metric,
		Threshold:      Threshold,
	}

	var aggregate float64
	switch metric {
	case Recall:
		aggregate = round4(ratio(totalTP, totalTP+totalFN))
		report.Metrics.RecallValue = ptr(aggregate)
		report.Summary.AverageRecall = ptr(aggregate)
	default:
		aggregate = round4(ratio(totalTP, totalTP+totalFP))
		report.Metrics.PrecisionValue = ptr(aggregate)
		report.Summary.AveragePrecision = ptr(aggregate)
	}
	report.ThresholdMet = aggregate >= Threshold
	return report
}

// scoreDocument computes the per-document counts over the set of distinct
// predicted class identifiers.
func scoreDocument(expert string, predictions []models.Prediction) (tp, fp, fn int) {
	distinct := make(map[string]struct{}, len(predictions))
	for _, p := range predictions {
		distinct[p.Label] = struct{}{}
	}
	if _, ok := distinct[expert]; ok {
		tp = 1
	}
	fp = len(distinct) - tp
	fn = 1 - tp
	return tp, fp, fn
}

// ratio is x/y with the 0/0 convention the metrics require.
func ratio(x, y int) float64 {
	if y == 0 {
		return 0
	}
	return float64(x) / float64(y)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func ptr(v float64) *float64 { return &v }
