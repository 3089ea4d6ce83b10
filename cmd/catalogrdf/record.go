package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/export"
)

func produceCmd(flags *globalFlags) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "produce <record.json>...",
		Short: "Print a record's graph as N-Triples",
		Long: `Reads catalog records (package dictionaries or action API
package_show responses; "-" reads stdin) and writes their merged graph
to stdout as N-Triples, Turtle or JSON-LD. Paths may be globs such as
"dumps/**/*.json".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			logger := setupLogging(flags.logLevel)
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			recs, err := readRecords(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			g := a.producer.Produce(recs[0])
			for _, rec := range recs[1:] {
				g.Merge(a.producer.Produce(rec))
			}
			return export.Write(cmd.OutOrStdout(), g, format)
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", string(export.DefaultFormat), "Output format (ntriples, turtle, jsonld)")
	return cmd
}

func syncCmd(flags *globalFlags) *cobra.Command {
	var operation string

	cmd := &cobra.Command{
		Use:   "sync <record.json>...",
		Short: "Apply record changes to the triple store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(flags.logLevel)
			op, err := catalog.ParseOperation(operation)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			recs, err := readRecords(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for _, rec := range recs {
				if err := a.syncer.Sync(ctx, rec, op); err != nil {
					return fmt.Errorf("sync %s: %w", rec.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", op, rec.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&operation, "operation", "o", string(catalog.OperationChanged), "Operation (created, changed, deleted)")
	return cmd
}

// expandPaths resolves glob arguments ("**" spans directories) in order.
// Plain paths and "-" pass through untouched so a missing file still
// reports its own read error.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == "-" || !hasMeta(arg) {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no records match %s", arg)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// readRecords parses every record named by args.
func readRecords(stdin io.Reader, args []string) ([]*catalog.Record, error) {
	paths, err := expandPaths(args)
	if err != nil {
		return nil, err
	}
	recs := make([]*catalog.Record, 0, len(paths))
	for _, path := range paths {
		rec, err := readRecord(stdin, path)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// readRecord parses the record in path, or stdin when path is "-".
func readRecord(stdin io.Reader, path string) (*catalog.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	var wrapped struct {
		Result json.RawMessage `json:"result"`
	}
	if json.Unmarshal(data, &wrapped) == nil && len(wrapped.Result) > 0 {
		data = wrapped.Result
	}
	rec, err := catalog.ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	return rec, nil
}
