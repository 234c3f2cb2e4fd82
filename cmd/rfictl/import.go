package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

var (
	importEntity string
	importFile   string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a JSON or YAML array of records into an entity",
	Long: `Load fixture records into the configured backend.

Records of writable entities are validated first and get creation dates
when they carry none. Records that already exist by id are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(importFile)
		if err != nil {
			return err
		}
		recs, err := decodeFixture(data, filepath.Ext(importFile))
		if err != nil {
			return fmt.Errorf("%s: %w", importFile, err)
		}

		ctx := cmd.Context()
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Import(ctx, importEntity, recs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d %s records\n", n, len(recs), importEntity)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importEntity, "entity", inventory.EntityAssessments, "entity to load (assessments|rfis)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "fixture file (.json, .yaml or .yml)")
	_ = importCmd.MarkFlagRequired("file")
}

// decodeFixture reads a top-level array of objects. YAML documents are
// converted to JSON first so records are stored the same way either way.
func decodeFixture(data []byte, ext string) ([]inventory.Record, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var docs []map[string]interface{}
		if err := yaml.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		js, err := json.Marshal(docs)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		return inventory.ParseRecords(js)
	case ".json", "":
		return inventory.ParseRecords(data)
	default:
		return nil, fmt.Errorf("unsupported fixture type %q", ext)
	}
}
