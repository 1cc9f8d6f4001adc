package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Correlation headers carried by clients. Handlers validate presence per
// endpoint; this middleware only lifts them into the request context.
const (
	ModelIDHeader           = "x-model-id"
	CorpusPathHeader        = "x-corpus-path"
	CorpusIDHeader          = "x-corpus-id"
	ClusteringJobHeader     = "x-clustering-job-id"
	ClassificationJobHeader = "x-classification-job-id"
	EvaluationTypeHeader    = "x-evaluation-type"
	TTLHoursHeader          = "x-ttl-hours"
	BaseModelHeader         = "X-Base-Model-ID"
)

const (
	modelIDKey           = "model-id"
	corpusPathKey        = "corpus-path"
	corpusIDKey          = "corpus-id"
	clusteringJobKey     = "clustering-job-id"
	classificationJobKey = "classification-job-id"
	evaluationTypeKey    = "evaluation-type"
	ttlHoursKey          = "ttl-hours"
	baseModelKey         = "base-model-id"
)

// CorrelationMiddleware extracts the custom correlation headers into the
// Gin context so handlers read them through one place.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(modelIDKey, c.GetHeader(ModelIDHeader))
		c.Set(corpusPathKey, c.GetHeader(CorpusPathHeader))
		c.Set(corpusIDKey, c.GetHeader(CorpusIDHeader))
		c.Set(clusteringJobKey, c.GetHeader(ClusteringJobHeader))
		c.Set(classificationJobKey, c.GetHeader(ClassificationJobHeader))
		c.Set(evaluationTypeKey, c.GetHeader(EvaluationTypeHeader))
		c.Set(ttlHoursKey, c.GetHeader(TTLHoursHeader))
		c.Set(baseModelKey, c.GetHeader(BaseModelHeader))
		c.Next()
	}
}

// GetModelID retrieves the x-model-id header value from the Gin context.
func GetModelID(c *gin.Context) string { return c.GetString(modelIDKey) }

// GetCorpusPath retrieves the x-corpus-path header value.
func GetCorpusPath(c *gin.Context) string { return c.GetString(corpusPathKey) }

// GetCorpusID retrieves the x-corpus-id header value.
func GetCorpusID(c *gin.Context) string { return c.GetString(corpusIDKey) }

// GetClusteringJobID retrieves the x-clustering-job-id header value.
func GetClusteringJobID(c *gin.Context) string { return c.GetString(clusteringJobKey) }

// GetClassificationJobID retrieves the x-classification-job-id header value.
func GetClassificationJobID(c *gin.Context) string { return c.GetString(classificationJobKey) }

// GetEvaluationType retrieves the x-evaluation-type header value.
func GetEvaluationType(c *gin.Context) string { return c.GetString(evaluationTypeKey) }

// GetTTLHours retrieves the x-ttl-hours header value.
func GetTTLHours(c *gin.Context) string { return c.GetString(ttlHoursKey) }

// GetBaseModelID retrieves the X-Base-Model-ID header value.
func GetBaseModelID(c *gin.Context) string { return c.GetString(baseModelKey) }

// CORSMiddleware allows browser clients on other origins to reach the mock.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, "+
				"Authorization, accept, origin, Cache-Control, X-Requested-With, "+
				ModelIDHeader+", "+CorpusPathHeader+", "+CorpusIDHeader+", "+
				ClusteringJobHeader+", "+ClassificationJobHeader+", "+
				EvaluationTypeHeader+", "+TTLHoursHeader+", "+BaseModelHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
