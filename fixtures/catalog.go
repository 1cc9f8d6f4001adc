// Package fixtures holds the static reference data the backend serves in
// place of real computation. Payloads live in resource files embedded in
// the binary; an on-disk directory can override them so the simulation
// data can change without a rebuild.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Zhilg/Dvizhenie/models"
)

//go:embed data
var embedded embed.FS

// Visualization page names served by GET /api/visualization/:name.
var visualizationPages = []string{"graphic", "planetar", "drilldown"}

// groundTruth is the on-disk shape of ground_truth.yaml.
type groundTruth struct {
	UnknownLabel string            `yaml:"unknown_label"`
	ExpertLabels map[string]string `yaml:"expert_labels"`
}

// Catalog is the loaded fixture set. It is immutable after Load; handlers
// and the evaluation engine read from it concurrently without locking.
type Catalog struct {
	Models         []models.ModelInfo
	BaseEmbedding  []float64
	SearchResults  []models.SearchResult
	NormalizedText string

	UploadResult         *models.UploadResult
	ClusterResult        *models.ClassificationResult
	ClassificationResult *models.ClassificationResult
	FineTuningResult     *models.FineTuningResult

	grntiTemplate  *models.GRNTIResult
	expertLabels   map[string]string
	unknownLabel   string
	visualizations map[string][]byte
}

// Load reads the catalog from dir, falling back to the embedded copies for
// any file dir does not provide. An empty dir loads the embedded set only.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{visualizations: make(map[string][]byte)}

	if err := readJSON(dir, "models.json", &c.Models); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "embeddings.json", &c.BaseEmbedding); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "search_results.json", &c.SearchResults); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "upload_result.json", &c.UploadResult); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "cluster_result.json", &c.ClusterResult); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "classification_result.json", &c.ClassificationResult); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "grnti_result.json", &c.grntiTemplate); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "fine_tuning_result.json", &c.FineTuningResult); err != nil {
		return nil, err
	}

	text, err := readFile(dir, "normalized_text.txt")
	if err != nil {
		return nil, err
	}
	c.NormalizedText = string(text)

	raw, err := readFile(dir, "ground_truth.yaml")
	if err != nil {
		return nil, err
	}
	var gt groundTruth
	if err := yaml.Unmarshal(raw, &gt); err != nil {
		return nil, fmt.Errorf("parse ground_truth.yaml: %w", err)
	}
	c.expertLabels = gt.ExpertLabels
	c.unknownLabel = gt.UnknownLabel
	if c.unknownLabel == "" {
		c.unknownLabel = "unknown"
	}

	for _, name := range visualizationPages {
		page, err := readFile(dir, filepath.Join("visualization", name+".html"))
		if err != nil {
			return nil, err
		}
		c.visualizations[name] = page
	}

	// Ids the original minted once per process at import time.
	if c.UploadResult.CorpusID == "" {
		c.UploadResult.CorpusID = uuid.New().String()
	}
	if c.FineTuningResult.NewModelID == "" {
		c.FineTuningResult.NewModelID = "fine_tuned_" + uuid.New().String()[:8]
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	v := validator.New()
	if len(c.Models) == 0 {
		return fmt.Errorf("fixture catalog has no models")
	}
	for _, m := range c.Models {
		if err := v.Struct(m); err != nil {
			return fmt.Errorf("invalid model descriptor %q: %w", m.ModelID, err)
		}
	}
	if len(c.BaseEmbedding) == 0 {
		return fmt.Errorf("fixture catalog has an empty base embedding")
	}
	return nil
}

// Model looks up a model descriptor by id.
func (c *Catalog) Model(id string) (models.ModelInfo, bool) {
	for _, m := range c.Models {
		if m.ModelID == id {
			return m, true
		}
	}
	return models.ModelInfo{}, false
}

// Embedding returns a vector of exactly dim elements, the base vector
// tiled and truncated.
func (c *Catalog) Embedding(dim int) []float64 {
	if dim <= 0 {
		return nil
	}
	out := make([]float64, dim)
	for i := range out {
		out[i] = c.BaseEmbedding[i%len(c.BaseEmbedding)]
	}
	return out
}

// ExpertLabel returns the ground-truth cluster for a filename, or the
// unknown sentinel when no expert labelled it.
func (c *Catalog) ExpertLabel(file string) string {
	if label, ok := c.expertLabels[file]; ok {
		return label
	}
	return c.unknownLabel
}

// GRNTIResult stamps the GRNTI template with the submitted corpus path and
// model id. The per-file records and statistics are shared with the
// template; callers must not mutate them.
func (c *Catalog) GRNTIResult(corpusPath, modelID string) *models.GRNTIResult {
	r := *c.grntiTemplate
	r.Folder = corpusPath
	r.ModelID = modelID
	return &r
}

// Visualization returns the raw HTML for one of the visualization pages.
func (c *Catalog) Visualization(name string) ([]byte, bool) {
	page, ok := c.visualizations[name]
	return page, ok
}

func readJSON(dir, name string, v any) error {
	data, err := readFile(dir, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func readFile(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
	}
	data, err := embedded.ReadFile("data/" + filepath.ToSlash(name))
	if err != nil {
		return nil, fmt.Errorf("read embedded fixture %s: %w", name, err)
	}
	return data, nil
}
