// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/rebelford/CheminformaticsPackage26/internal/artifact"
	"github.com/rebelford/CheminformaticsPackage26/internal/chunks"
	"github.com/rebelford/CheminformaticsPackage26/internal/pubchem"
	"github.com/rebelford/CheminformaticsPackage26/internal/store"
	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties [CID...]",
	Short: "Retrieve compound properties for a CID list",
	Long: `Properties retrieves compound properties for large CID lists using
chunked API requests with rate limiting. The merged CSV goes to stdout,
or to a versioned file under the downloads directory with --save (a
.meta.yaml sidecar records the request and any failed chunk indices).

CIDs come from positional arguments, from a JSON object of CID counts
via --cid-file, or both. Chunks that fail after all transport retries
are reported by index; the command exits non-zero when any chunk
failed so scripts can notice.`,
	RunE: runProperties,
}

func init() {
	propertiesCmd.Flags().String("cid-file", "", "JSON file mapping CIDs to counts; keys become the CID list")
	propertiesCmd.Flags().StringSlice("props", nil, "property fields to request, in order (default: the standard six)")
	propertiesCmd.Flags().Int("chunk-size", 0, "CIDs per API request (default 100)")
	propertiesCmd.Flags().Duration("delay", 0, "pause between chunk requests (default 250ms)")
	propertiesCmd.Flags().Bool("save", false, "save the CSV under the downloads directory instead of printing it")
	propertiesCmd.Flags().String("prefix", "properties", "filename prepend for --save")
	propertiesCmd.Flags().String("downloads-dir", "", "directory for saved artifacts (default downloads)")
	propertiesCmd.Flags().Bool("store", false, "also ingest the result into the local compound store")
	propertiesCmd.Flags().String("data-dir", "", "base directory for the compound store (default data)")
	addHTTPFlags(propertiesCmd)

	rootCmd.AddCommand(propertiesCmd)
}

func runProperties(cmd *cobra.Command, args []string) error {
	cids, err := collectCIDs(cmd, args)
	if err != nil {
		return err
	}
	if len(cids) == 0 {
		return fmt.Errorf("provide one or more CIDs, or --cid-file")
	}

	props, _ := cmd.Flags().GetStringSlice("props")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	delay, _ := cmd.Flags().GetDuration("delay")
	if len(props) == 0 {
		props = viper.GetStringSlice("retrieval.properties")
	}
	if chunkSize == 0 {
		chunkSize = viper.GetInt("retrieval.chunk_size")
	}
	if delay == 0 {
		delay = viper.GetDuration("retrieval.inter_chunk_delay")
	}

	client := pubchem.NewClient(httpConfig(cmd), logger)
	opts := pubchem.RetrievalOptions{
		Properties:      props,
		ChunkSize:       chunkSize,
		InterChunkDelay: delay,
	}

	result, err := client.PropertiesForCIDs(cmd.Context(), cids, opts, os.Stderr)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRetrieval(cmd, result, cids, props, chunkSize); err != nil {
			return err
		}
	} else {
		fmt.Println(result.CSV)
	}

	if toStore, _ := cmd.Flags().GetBool("store"); toStore {
		if err := ingestRetrieval(cmd, result); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d chunk(s) failed retrieval: %v", len(result.FailedChunks), result.FailedChunks)
	}
	return nil
}

// collectCIDs merges positional CID arguments with the keys of an
// optional --cid-file counts file, ascending.
func collectCIDs(cmd *cobra.Command, args []string) ([]int, error) {
	var cids []int
	for _, arg := range args {
		cid, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid CID %q", arg)
		}
		cids = append(cids, cid)
	}

	cidFile, _ := cmd.Flags().GetString("cid-file")
	if cidFile != "" {
		counts, err := artifact.LoadCIDCounts(cidFile, logger)
		if err != nil {
			return nil, err
		}
		fromFile := make([]int, 0, len(counts))
		for cid := range counts {
			fromFile = append(fromFile, cid)
		}
		sort.Ints(fromFile)
		cids = append(cids, fromFile...)
	}

	return cids, nil
}

// saveRetrieval writes the merged CSV under the downloads directory
// with a versioned filename, plus a .meta.yaml sidecar recording the
// request parameters and failed chunk indices.
func saveRetrieval(cmd *cobra.Command, result pubchem.Retrieval, cids []int, props []string, chunkSize int) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	dir, _ := cmd.Flags().GetString("downloads-dir")
	if dir == "" {
		dir = viper.GetString("output.downloads_dir")
	}

	path, err := artifact.SaveCSV(result.CSV, prefix, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved: %s\n", path)

	if len(props) == 0 {
		props = pubchem.DefaultProperties
	}
	if chunkSize <= 0 {
		chunkSize = pubchem.DefaultChunkSize
	}
	report := types.RetrievalReport{
		Properties:   props,
		CIDCount:     len(cids),
		ChunkSize:    chunkSize,
		ChunkCount:   chunks.Count(len(cids), chunkSize),
		FailedChunks: result.FailedChunks,
		RetrievedAt:  time.Now().UTC(),
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling retrieval report: %w", err)
	}
	reportPath := path + ".meta.yaml"
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("writing retrieval report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "saved: %s\n", reportPath)
	return nil
}

// ingestRetrieval upserts the retrieved rows into the local compound
// store.
func ingestRetrieval(cmd *cobra.Command, result pubchem.Retrieval) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("store.data_dir")
	}
	if dataDir == "" {
		dataDir = "data"
	}

	s, err := store.Open(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.Ingest(cmd.Context(), result.CSV, os.Stderr)
	return err
}
