package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trelloimport/internal/guid"
	"trelloimport/internal/importer"
	"trelloimport/internal/model"
	"trelloimport/internal/trello"
)

var convertOpts struct {
	members  string
	pretty   bool
	idPrefix string
}

var convertCmd = &cobra.Command{
	Use:   "convert EXPORT.json",
	Short: "Convert a Trello export and print the boards and blocks as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOpts.members, "members", "", "JSON file mapping Trello member ids to user ids")
	convertCmd.Flags().BoolVar(&convertOpts.pretty, "pretty", false, "indent the output")
	convertCmd.Flags().StringVar(&convertOpts.idPrefix, "id-prefix", "", "allocate sequential ids PREFIX-1, PREFIX-2, ... instead of UUIDs")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	export, err := readExport(args[0])
	if err != nil {
		return err
	}
	if err := trello.Validate(export); err != nil {
		return err
	}
	memberIDs := map[string]string{}
	if convertOpts.members != "" {
		memberIDs, err = readMemberMap(convertOpts.members)
		if err != nil {
			return err
		}
	}

	newID := guid.New
	if convertOpts.idPrefix != "" {
		newID = guid.Sequence(convertOpts.idPrefix)
	}
	log := newLogger(cmd)
	svc := importer.New(nil, trello.NewConverter(newID, log), log)
	conv, err := svc.Convert(export, memberIDs)
	if err != nil {
		return err
	}

	out := struct {
		Boards []model.Board `json:"boards"`
		Blocks []model.Block `json:"blocks"`
	}{conv.Boards, conv.Blocks}
	enc := json.NewEncoder(cmd.OutOrStdout())
	if convertOpts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func readExport(path string) (*trello.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return trello.Decode(f)
}

func readMemberMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse member map %s: %w", path, err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}
