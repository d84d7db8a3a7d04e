package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/gotoon"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gotoon",
		Short:         "Decode and encode the line-based notation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDecodeCmd(), newEncodeCmd())
	return root
}

func newDecodeCmd() *cobra.Command {
	var (
		format   string
		partial  bool
		precise  bool
		maxDepth int
		maxBytes int64
	)
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode notation text from a file or stdin to JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			opt := gotoon.DecodeOpt{MaxDepth: maxDepth, MaxBytes: maxBytes}
			if precise {
				opt.NumberMode = gotoon.NumberJSONNumber
			}
			if partial {
				text := string(data)
				r := gotoon.DecodePartial(&text)
				fmt.Fprintln(cmd.ErrOrStderr(), r.State)
				if r.State == gotoon.PartialFailed {
					return fmt.Errorf("no decodable prefix")
				}
				return writeValue(cmd.OutOrStdout(), r.Value, format)
			}
			v, err := gotoon.SecureDecode(string(data), opt)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), v, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&partial, "partial", false, "treat the input as a truncated stream buffer")
	cmd.Flags().BoolVar(&precise, "precise", false, "preserve numbers as json.Number")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a JSON document from a file or stdin as notation text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			var v any
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}
			out, err := gotoon.Encode(v)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func writeValue(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
