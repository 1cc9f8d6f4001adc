package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Zhilg/Dvizhenie/middleware"
)

// NewRouter builds the full route table around a handler. The exact paths
// are part of the compatibility contract with existing clients.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.CorrelationMiddleware())

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/visualization/:name", h.Visualization)

		api.POST("/normalize", h.Normalize)
		api.POST("/embedding", h.Embedding)
		api.GET("/models", h.Models)

		api.POST("/semantic/upload", h.UploadCorpus)
		api.POST("/semantic/search", h.Search)
		api.POST("/semantic/search/unstructured", h.Search)

		api.GET("/jobs/:id", h.JobStatus)
		api.GET("/jobs/:id/result", h.JobResult)

		api.POST("/clusterization", h.Clusterization)
		api.POST("/classification", h.Classification)
		api.POST("/classification/grnti", h.GRNTIClassification)

		api.POST("/evaluation/precision", h.EvaluatePrecision)
		api.POST("/evaluation/recall", h.EvaluateRecall)

		api.POST("/fine-tuning/start", h.StartFineTuning)
		api.GET("/fine-tuning/history", h.FineTuningHistory)
	}

	return router
}
