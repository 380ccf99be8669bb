// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/rebelford/CheminformaticsPackage26/internal/store"
	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query the local compound store",
	Long: `Store queries the local SQLite compound store populated by
"cheminf properties --store". With no flags it prints a summary;
--cid shows one compound, --list shows stored CIDs, --export writes
full YAML and JSON dumps under the data directory.`,
	RunE: runStore,
}

func init() {
	storeCmd.Flags().String("data-dir", "", "base directory for the compound store (default data)")
	storeCmd.Flags().Int("cid", 0, "show the stored properties of one CID")
	storeCmd.Flags().Bool("list", false, "list stored CIDs")
	storeCmd.Flags().Int("max-results", 0, "maximum number of listed CIDs (default 20, negative for all)")
	storeCmd.Flags().Bool("export", false, "export the store to YAML and JSON files")
	storeCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("store.data_dir")
	}
	if dataDir == "" {
		dataDir = "data"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	s, err := store.Open(types.StoreConfig{DataDir: dataDir, MaxResults: maxResults})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()

	if cid, _ := cmd.Flags().GetInt("cid"); cid > 0 {
		compound, err := s.Get(ctx, cid)
		if err != nil {
			return err
		}
		if compound == nil {
			return fmt.Errorf("CID %d is not in the store", cid)
		}
		return printCompound(cmd, compound)
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		cids, err := s.CIDs(ctx, maxResults)
		if err != nil {
			return err
		}
		for _, cid := range cids {
			fmt.Println(cid)
		}
		return nil
	}

	if export, _ := cmd.Flags().GetBool("export"); export {
		yamlPath, err := s.ExportYAML(ctx)
		if err != nil {
			return err
		}
		jsonPath, err := s.ExportJSON(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("exported: %s\nexported: %s\n", yamlPath, jsonPath)
		return nil
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	names, err := s.PropertyNames(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("compounds: %d\nproperties: %s\n", count, strings.Join(names, ", "))
	return nil
}

func printCompound(cmd *cobra.Command, compound *types.Compound) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(compound)
	}

	data, err := yaml.Marshal(compound)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
