// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebelford/CheminformaticsPackage26/internal/pubchem"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search PubChem for compounds by SMILES",
	Long: `Search runs PubChem fast searches keyed on a SMILES string: 2D
similarity search with a Tanimoto threshold, or identity search with a
configurable identity relationship. Both print the matching CIDs.`,
}

var similarityCmd = &cobra.Command{
	Use:   "similarity SMILES",
	Short: "2D fast similarity search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilarity,
}

var identityCmd = &cobra.Command{
	Use:   "identity SMILES",
	Short: "Fast identity search",
	Long: `Identity search finds CIDs related to the query SMILES by the chosen
identity type (same_connectivity, same_parent, same_scaffold, ...). The
default POST request variant is occasionally unstable upstream; use
--method get to fall back to the GET variant.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentity,
}

func init() {
	similarityCmd.Flags().Int("threshold", 0, "Tanimoto similarity threshold 0-100 (default 90)")
	similarityCmd.Flags().Bool("json", false, "output CIDs as JSON")
	addHTTPFlags(similarityCmd)

	identityCmd.Flags().String("identity-type", "", "identity relationship (default same_connectivity)")
	identityCmd.Flags().String("method", "", "HTTP method variant: post or get (default post)")
	identityCmd.Flags().Bool("json", false, "output CIDs as JSON")
	addHTTPFlags(identityCmd)

	searchCmd.AddCommand(similarityCmd)
	searchCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	threshold, _ := cmd.Flags().GetInt("threshold")

	client := pubchem.NewClient(httpConfig(cmd), logger)
	cids, err := client.FastSimilarity(cmd.Context(), args[0], threshold)
	if err != nil {
		return err
	}

	return printCIDs(cmd, cids)
}

func runIdentity(cmd *cobra.Command, args []string) error {
	identityType, _ := cmd.Flags().GetString("identity-type")
	method, _ := cmd.Flags().GetString("method")

	client := pubchem.NewClient(httpConfig(cmd), logger)
	cids, err := client.FastIdentity(cmd.Context(), args[0], pubchem.IdentityOptions{
		IdentityType: identityType,
		Method:       method,
	})
	if err != nil {
		return err
	}

	return printCIDs(cmd, cids)
}

func printCIDs(cmd *cobra.Command, cids []int) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if cids == nil {
			cids = []int{}
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(cids)
	}

	if len(cids) == 0 {
		fmt.Fprintln(os.Stderr, "No matches found.")
		return nil
	}
	for _, cid := range cids {
		fmt.Println(cid)
	}
	return nil
}
