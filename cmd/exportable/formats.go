package main

import (
	"github.com/spf13/cobra"

	"github.com/bjaus/exportable"
)

func newFormatsCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the supported output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := exportable.Lookup(as)
			if err != nil {
				return err
			}
			tbl, err := formatsTable()
			if err != nil {
				return err
			}
			return exportable.Dump(cmd.OutOrStdout(), e, tbl)
		},
	}
	cmd.Flags().StringVar(&as, "as", "txt", "format of the listing itself")
	return cmd
}

// formatsTable describes every registered exporter.
func formatsTable() (*exportable.ListTable, error) {
	var rows [][]any
	for _, ext := range exportable.Extensions() {
		e, err := exportable.Lookup(ext)
		if err != nil {
			return nil, err
		}
		s, ok := e.(exportable.StrictExporter)
		rows = append(rows, []any{ext, e.ContentType(), ok && s.RequiresStrict()})
	}
	return exportable.NewListTable(exportable.FromSlice(rows), []exportable.Slot{
		exportable.TextColumn("extension", exportable.WithVerboseName("Extension")),
		exportable.TextColumn("content_type", exportable.WithVerboseName("Content type")),
		exportable.TextColumn("buffers", exportable.WithVerboseName("Buffers rows"), exportable.WithCellFunc(yesNo)),
	})
}

func yesNo(v any) (any, error) {
	if b, _ := v.(bool); b {
		return "yes", nil
	}
	return "no", nil
}
