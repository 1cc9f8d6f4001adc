// Command dump-fixtures loads the fixture catalog and prints one payload as
// pretty JSON, for eyeballing what the mock will serve.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Zhilg/Dvizhenie/fixtures"
)

func main() {
	dir := flag.String("dir", "", "Directory overriding the embedded fixture catalog")
	name := flag.String("name", "", "Payload to print: models, embeddings, search, upload, cluster, classification, grnti, fine-tuning")
	flag.Parse()

	catalog, err := fixtures.Load(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load fixture catalog: %v\n", err)
		os.Exit(1)
	}

	var payload any
	switch *name {
	case "models":
		payload = catalog.Models
	case "embeddings":
		payload = catalog.BaseEmbedding
	case "search":
		payload = catalog.SearchResults
	case "upload":
		payload = catalog.UploadResult
	case "cluster":
		payload = catalog.ClusterResult
	case "classification":
		payload = catalog.ClassificationResult
	case "grnti":
		payload = catalog.GRNTIResult("", "")
	case "fine-tuning":
		payload = catalog.FineTuningResult
	default:
		fmt.Fprintf(os.Stderr, "Unknown payload %q\n", *name)
		flag.Usage()
		os.Exit(2)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal payload: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
