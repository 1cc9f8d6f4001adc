package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zhilg/Dvizhenie/evaluation"
	"github.com/Zhilg/Dvizhenie/fixtures"
	"github.com/Zhilg/Dvizhenie/jobs"
	"github.com/Zhilg/Dvizhenie/middleware"
	"github.com/Zhilg/Dvizhenie/models"
)

// maxBodyBytes is the request size cap on the text endpoints.
const maxBodyBytes = 10 << 20

// Handler handles HTTP requests.
type Handler struct {
	catalog *fixtures.Catalog
	store   *jobs.Store
	now     func() time.Time
}

// NewHandler creates a new handler instance. A nil clock means time.Now.
func NewHandler(catalog *fixtures.Catalog, store *jobs.Store, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		catalog: catalog,
		store:   store,
		now:     now,
	}
}

// Visualization handles GET /api/visualization/:name.
func (h *Handler) Visualization(c *gin.Context) {
	page, ok := h.catalog.Visualization(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Normalize handles POST /api/normalize.
func (h *Handler) Normalize(c *gin.Context) {
	if !h.checkTextRequest(c, "INVALID_ENCODING") {
		return
	}
	c.Header("language", "ru")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.catalog.NormalizedText))
}

// Embedding handles POST /api/embedding. The returned vector is the base
// fixture vector tiled and truncated to the requested model's dimension.
func (h *Handler) Embedding(c *gin.Context) {
	if !h.checkTextRequest(c, "INVALID_ENCODING") {
		return
	}

	modelID := middleware.GetModelID(c)
	if modelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Model ID required"})
		return
	}
	model, ok := h.catalog.Model(modelID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	c.JSON(http.StatusOK, models.EmbeddingResponse{
		Embeddings: h.catalog.Embedding(model.Dimension),
		Dimension:  model.Dimension,
	})
}

// Models handles GET /api/models.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Models)
}

// UploadCorpus handles POST /api/semantic/upload.
func (h *Handler) UploadCorpus(c *gin.Context) {
	h.createCorpusJob(c, models.JobTypeUpload, h.catalog.UploadResult)
}

// Clusterization handles POST /api/clusterization.
func (h *Handler) Clusterization(c *gin.Context) {
	h.createCorpusJob(c, models.JobTypeClusterization, h.catalog.ClusterResult)
}

// Classification handles POST /api/classification.
func (h *Handler) Classification(c *gin.Context) {
	h.createCorpusJob(c, models.JobTypeClassification, h.catalog.ClassificationResult)
}

// createCorpusJob is the shared path for the corpus-scoped job creation
// endpoints: JSON content type, corpus/model headers, model existence, then
// a job with its fixture result attached up front.
func (h *Handler) createCorpusJob(c *gin.Context, jobType models.JobType, result any) {
	if !strings.Contains(c.ContentType(), "application/json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content type"})
		return
	}

	corpusPath := middleware.GetCorpusPath(c)
	modelID := middleware.GetModelID(c)
	if corpusPath == "" || modelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required headers"})
		return
	}
	if _, ok := h.catalog.Model(modelID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	jobID := h.store.Create(jobType, models.JobParams{
		CorpusPath: corpusPath,
		ModelID:    modelID,
	}, result)
	log.Printf("Created %s job %s for corpus %s (model %s)", jobType, jobID, corpusPath, modelID)

	c.JSON(http.StatusAccepted, models.JobAccepted{
		JobID:            jobID,
		EstimatedTimeMin: jobType.EstimatedMinutes(),
	})
}

// JobStatus handles GET /api/jobs/:id.
func (h *Handler) JobStatus(c *gin.Context) {
	status, err := h.store.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// JobResult handles GET /api/jobs/:id/result. Absent jobs and jobs still
// inside the processing window answer the same way.
func (h *Handler) JobResult(c *gin.Context) {
	result, err := h.store.Result(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Result not ready"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Search handles POST /api/semantic/search and its /unstructured variant.
func (h *Handler) Search(c *gin.Context) {
	if !h.checkTextRequest(c, "Invalid content type") {
		return
	}

	corpusID := middleware.GetCorpusID(c)
	modelID := middleware.GetModelID(c)
	if corpusID == "" || modelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required headers"})
		return
	}
	if _, ok := h.catalog.Model(modelID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	c.JSON(http.StatusOK, models.SearchResponse{Results: h.catalog.SearchResults})
}

// GRNTIClassification handles POST /api/classification/grnti. It depends on
// an earlier clusterization job, which must exist in the store.
func (h *Handler) GRNTIClassification(c *gin.Context) {
	corpusPath := middleware.GetCorpusPath(c)
	modelID := middleware.GetModelID(c)
	clusteringJobID := middleware.GetClusteringJobID(c)
	if corpusPath == "" || modelID == "" || clusteringJobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required headers: x-corpus-path, x-model-id, x-clustering-job-id",
		})
		return
	}

	if !h.store.Exists(clusteringJobID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clustering job not found"})
		return
	}
	if _, ok := h.catalog.Model(modelID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	params := models.JobParams{
		CorpusPath:      corpusPath,
		ModelID:         modelID,
		ClusteringJobID: clusteringJobID,
		TTLHours:        middleware.GetTTLHours(c),
	}
	jobID := h.store.Create(models.JobTypeGRNTI, params, h.catalog.GRNTIResult(corpusPath, modelID))
	log.Printf("Created grnti_classification job %s referencing clustering job %s", jobID, clusteringJobID)

	c.JSON(http.StatusAccepted, models.JobAccepted{
		JobID:            jobID,
		EstimatedTimeMin: models.JobTypeGRNTI.EstimatedMinutes(),
	})
}

// EvaluatePrecision handles POST /api/evaluation/precision.
func (h *Handler) EvaluatePrecision(c *gin.Context) {
	h.evaluate(c, evaluation.Precision)
}

// EvaluateRecall handles POST /api/evaluation/recall.
func (h *Handler) EvaluateRecall(c *gin.Context) {
	h.evaluate(c, evaluation.Recall)
}

// evaluate runs the synchronous evaluation over a completed classification
// job. The result shape is selected by the x-evaluation-type header, never
// inferred from the stored result itself.
func (h *Handler) evaluate(c *gin.Context, metric evaluation.Metric) {
	jobID := middleware.GetClassificationJobID(c)
	evalType := middleware.GetEvaluationType(c)
	if jobID == "" || evalType == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required headers: x-classification-job-id, x-evaluation-type",
		})
		return
	}

	job, err := h.store.Snapshot(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Classification job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job.Status != models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Classification job not completed"})
		return
	}

	var report *evaluation.Report
	if evalType == "grnti" {
		result, ok := job.Result.(*models.GRNTIResult)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Classification job result is not a GRNTI result"})
			return
		}
		report = evaluation.EvaluateGRNTI(result, metric)
	} else {
		result, ok := job.Result.(*models.ClassificationResult)
		if !ok || result.CorrespondenceTable == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Classification job result has no correspondence table"})
			return
		}
		report = evaluation.EvaluateCluster(result.CorrespondenceTable, h.catalog.ExpertLabel, metric)
	}

	report.ClassificationJobID = jobID
	report.ClassificationType = evalType
	c.JSON(http.StatusOK, report)
}

// StartFineTuning handles POST /api/fine-tuning/start. Parameters arrive as
// multipart form fields alongside the training files; the files themselves
// are only counted, never stored.
func (h *Handler) StartFineTuning(c *gin.Context) {
	baseModelID := middleware.GetBaseModelID(c)
	if baseModelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Base-Model-ID header"})
		return
	}
	if _, ok := h.catalog.Model(baseModelID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Base model not found"})
		return
	}

	fileCount := 0
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		for _, fs := range form.File {
			fileCount += len(fs)
		}
	case errors.Is(err, http.ErrNotMultipart):
		// Parameters are optional; a bare request falls back to defaults.
	default:
		log.Printf("Failed to parse fine-tuning form: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	newModelName := c.DefaultPostForm("new_model_name", fmt.Sprintf("fine_tuned_%d", h.now().Unix()))
	minFileSize := c.DefaultPostForm("min_file_size", "0")
	maxFileSize := c.DefaultPostForm("max_file_size", "10485760")
	fileExtensions := c.DefaultPostForm("file_extensions", "[]")
	log.Printf("Fine-tuning request for model %s: %d files, new model %s, sizes %s..%s, extensions %s",
		baseModelID, fileCount, newModelName, minFileSize, maxFileSize, fileExtensions)

	jobID := h.store.Create(models.JobTypeFineTuning, models.JobParams{
		BaseModelID:  baseModelID,
		NewModelName: newModelName,
	}, h.catalog.FineTuningResult)

	c.JSON(http.StatusAccepted, models.JobAccepted{
		JobID:            jobID,
		EstimatedTimeMin: models.JobTypeFineTuning.EstimatedMinutes(),
	})
}

// FineTuningHistory handles GET /api/fine-tuning/history. Only completed
// fine-tuning jobs are listed.
func (h *Handler) FineTuningHistory(c *gin.Context) {
	history := make([]models.FineTuningHistoryEntry, 0)
	for _, job := range h.store.History(models.JobTypeFineTuning) {
		result, ok := job.Result.(*models.FineTuningResult)
		if !ok {
			continue
		}
		history = append(history, models.FineTuningHistoryEntry{
			JobID:        job.ID,
			BaseModelID:  job.Params.BaseModelID,
			NewModelID:   result.NewModelID,
			Status:       job.Status,
			CreatedAt:    job.CreatedAt.Unix(),
			TrainingTime: result.TrainingTime,
		})
	}
	c.JSON(http.StatusOK, history)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// checkTextRequest enforces the text/plain content type and the body size
// cap shared by the text endpoints. The rejection message differs per
// endpoint, so callers pass it in.
func (h *Handler) checkTextRequest(c *gin.Context, typeError string) bool {
	if !strings.Contains(c.ContentType(), "text/plain") {
		c.JSON(http.StatusBadRequest, gin.H{"error": typeError})
		return false
	}
	if c.Request.ContentLength > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "PAYLOAD_TOO_LARGE"})
		return false
	}
	return true
}
