package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobType enumerates every long-running operation the backend simulates.
// Dispatch sites switch exhaustively over these values; adding a type means
// touching EstimatedMinutes and the handler that creates it.
type JobType string

const (
	JobTypeUpload         JobType = "upload"
	JobTypeClusterization JobType = "clusterization"
	JobTypeClassification JobType = "classification"
	JobTypeGRNTI          JobType = "grnti_classification"
	JobTypeFineTuning     JobType = "fine_tuning"
)

// EstimatedMinutes is the advisory estimate returned at submission. It is
// metadata for the client only and never influences when a job completes.
func (t JobType) EstimatedMinutes() int {
	switch t {
	case JobTypeUpload:
		return 120
	case JobTypeClusterization:
		return 120
	case JobTypeClassification:
		return 45
	case JobTypeGRNTI:
		return 2
	case JobTypeFineTuning:
		return 60
	}
	return 0
}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeUpload, JobTypeClusterization, JobTypeClassification, JobTypeGRNTI, JobTypeFineTuning:
		return true
	}
	return false
}

// JobStatus is the two-state lifecycle of a job. Transitions are monotonic:
// once completed a job never reports processing again.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
)

// JobParams carries the validated request inputs that produced a job.
// Which fields are populated depends on the job type.
type JobParams struct {
	CorpusPath      string `json:"corpus_path,omitempty"`
	ModelID         string `json:"model_id,omitempty"`
	ClusteringJobID string `json:"clustering_job_id,omitempty"`
	BaseModelID     string `json:"base_model_id,omitempty"`
	NewModelName    string `json:"new_model_name,omitempty"`
	TTLHours        string `json:"ttl_hours,omitempty"`
}

// Job is one tracked asynchronous operation. The result is decided at
// creation time and handed back verbatim once the processing window elapses.
type Job struct {
	ID        string
	Type      JobType
	Status    JobStatus
	CreatedAt time.Time
	Params    JobParams
	Result    any
}

// JobAccepted is the 202 body returned by every job-creation endpoint.
type JobAccepted struct {
	JobID            string `json:"job_id"`
	EstimatedTimeMin int    `json:"estimated_time_min"`
}

// ProgressDetails is the synthetic per-poll detail payload while processing.
type ProgressDetails struct {
	BytesProcessed int `json:"bytes_processed"`
	FilesProcessed int `json:"files_processed"`
}

// JobStatusResponse is the polling body. Progress and Details are present
// while processing; ResultURL is present once completed.
type JobStatusResponse struct {
	Status    JobStatus        `json:"status"`
	Progress  *int             `json:"progress,omitempty"`
	Details   *ProgressDetails `json:"details,omitempty"`
	ResultURL string           `json:"result_url,omitempty"`
}

// ModelInfo describes one embedding model in the catalog.
type ModelInfo struct {
	ModelID   string `json:"model_id" validate:"required"`
	ModelName string `json:"model_name" validate:"required"`
	Dimension int    `json:"dimension" validate:"gt=0"`
}

// EmbeddingResponse is the body of POST /api/embedding.
type EmbeddingResponse struct {
	Embeddings []float64 `json:"embeddings"`
	Dimension  int       `json:"dimension"`
}

// SearchResult is one hit in the semantic search fixture.
type SearchResult struct {
	FileID   string  `json:"file_id"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
	Fragment string  `json:"fragment"`
}

// SearchResponse wraps search hits.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// UploadResult is the stored result of an upload job. CorpusID is minted
// once per process when the catalog loads.
type UploadResult struct {
	CorpusID   string     `json:"corpus_id"`
	FileCount  int        `json:"file_count"`
	IndexStats IndexStats `json:"index_stats"`
}

type IndexStats struct {
	TotalSizeGB float64 `json:"total_size_gb"`
}

// ClusterNode is one node of the hierarchical cluster tree.
type ClusterNode struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	FileCount              int            `json:"fileCount"`
	AvgSimilarity          float64        `json:"avgSimilarity"`
	SimilarityDistribution []float64      `json:"similarityDistribution,omitempty"`
	Files                  []ClusterFile  `json:"files,omitempty"`
	Children               []*ClusterNode `json:"children"`
}

type ClusterFile struct {
	Name string `json:"name"`
}

// Prediction is a (class identifier, score) pair. On the wire it is a
// two-element JSON array, e.g. ["cluster1", 0.92].
type Prediction struct {
	Label string
	Score float64
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Label, p.Score})
}

func (p *Prediction) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("prediction must be a [label, score] pair: %w", err)
	}
	if err := json.Unmarshal(pair[0], &p.Label); err != nil {
		return fmt.Errorf("prediction label: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Score); err != nil {
		return fmt.Errorf("prediction score: %w", err)
	}
	return nil
}

// CorrespondenceEntry maps one document to its ranked cluster predictions.
type CorrespondenceEntry struct {
	File        string       `json:"f"`
	Predictions []Prediction `json:"d"`
}

// CorrespondenceTable is the cluster-classification result shape consumed
// by the evaluation engine.
type CorrespondenceTable struct {
	Files        []CorrespondenceEntry `json:"files"`
	ClusterNames map[string]string     `json:"cluster_names,omitempty"`
}

// ClassificationResult is the stored result of clusterization and
// classification jobs. Clusterization results carry only the tree and the
// visualization links; classification results also carry the
// correspondence table.
type ClassificationResult struct {
	Folder                  string               `json:"folder"`
	Data                    *ClusterNode         `json:"data"`
	CorrespondenceTable     *CorrespondenceTable `json:"correspondence_table,omitempty"`
	GraphicRepresentation   string               `json:"graphic_representation,omitempty"`
	PlanetarRepresentation  string               `json:"planetar_representation,omitempty"`
	DrillDownRepresentation string               `json:"drill-down_representation,omitempty"`
}

// GRNTIFileResult is one per-document record in a GRNTI classification
// result: the expert label plus the system's top-5 predictions.
type GRNTIFileResult struct {
	File               string       `json:"file"`
	ExpertGRNTICode    string       `json:"expert_grnti_code"`
	ExpertGRNTIName    string       `json:"expert_grnti_name"`
	PredictedGRNTICode string       `json:"predicted_grnti_code"`
	PredictedGRNTIName string       `json:"predicted_grnti_name"`
	Similarity         float64      `json:"similarity"`
	Top5Predictions    []Prediction `json:"top_5_predictions"`
}

type GRNTISummary struct {
	TotalFiles          int     `json:"total_files"`
	FilesClassified     int     `json:"files_classified"`
	AgreementWithExpert float64 `json:"agreement_with_expert"`
	AccuracyTop3        float64 `json:"accuracy_top_3"`
}

type GRNTICodeStats struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ExpertCount   int     `json:"expert_count"`
	SystemCount   int     `json:"system_count"`
	TruePositive  int     `json:"true_positive"`
	FalsePositive int     `json:"false_positive"`
	FalseNegative int     `json:"false_negative"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
}

type GRNTIStats struct {
	Summary       GRNTISummary              `json:"summary"`
	DetailedStats map[string]GRNTICodeStats `json:"detailed_stats"`
}

// GRNTIResult is the stored result of a grnti_classification job. Folder
// and ModelID are stamped from the request when the job is created.
type GRNTIResult struct {
	Folder                string            `json:"folder"`
	ModelID               string            `json:"model_id"`
	GRNTIBranch           string            `json:"grnti_branch"`
	ClassificationResults GRNTIStats        `json:"classification_results"`
	Files                 []GRNTIFileResult `json:"files"`
	ConfusionMatrixURL    string            `json:"confusion_matrix_url"`
	ReportURL             string            `json:"report_url"`
}

// PerformanceComparison compares the base and fine-tuned models.
type PerformanceComparison struct {
	BaseAccuracy      float64 `json:"base_accuracy"`
	FineTunedAccuracy float64 `json:"fine_tuned_accuracy"`
	BaseTrainingTime  float64 `json:"base_training_time"`
	FineTuningTime    float64 `json:"fine_tuning_time"`
}

// FineTuningResult is the stored result of a fine_tuning job. The
// clustering breakdown is an opaque fixture blob passed through verbatim.
type FineTuningResult struct {
	NewModelID             string                `json:"new_model_id"`
	BaseModelID            string                `json:"base_model_id"`
	FilesProcessed         int                   `json:"files_processed"`
	TrainingTime           float64               `json:"training_time"`
	PerformanceImprovement float64               `json:"performance_improvement"`
	PerformanceComparison  PerformanceComparison `json:"performance_comparison"`
	ClusteringResult       json.RawMessage       `json:"clustering_result"`
}

// FineTuningHistoryEntry is one row of GET /api/fine-tuning/history.
type FineTuningHistoryEntry struct {
	JobID        string    `json:"job_id"`
	BaseModelID  string    `json:"base_model_id"`
	NewModelID   string    `json:"new_model_id"`
	Status       JobStatus `json:"status"`
	CreatedAt    int64     `json:"created_at"`
	TrainingTime float64   `json:"training_time"`
}
