package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/sofplus/cvarpack/compiler"
)

var log = commonlog.GetLogger("cvarpack.cli")

var (
	flagFormat      string
	flagOutput      string
	flagMaxCvarSize int
	flagHashLen     int
)

var compileCmd = &cobra.Command{
	Use:   "compile <source>",
	Short: "Compile a single source file into a cvar config",
	Long: `Compile one script or markup source into a .cfg file of cvar cells.

The source variant is detected from the file extension (.func for
scripts, .rfm for menu markup) and can be forced with --format. The
output path defaults to the source path with a .cfg extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(args[0])
	},
}

func init() {
	compileCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "source format: script or markup (default: by extension)")
	compileCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default: source with .cfg extension)")
	compileCmd.Flags().IntVar(&flagMaxCvarSize, "max-cvar-size", compiler.DefaultMaxCellSize, "capacity ceiling for a rendered set line")
	compileCmd.Flags().IntVar(&flagHashLen, "hash-len", compiler.DefaultHashLen, "label hash length in generated names")
}

// detectFormat maps a file extension to a source variant.
func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".func", ".txt":
		return "script", nil
	case ".rfm", ".menu":
		return "markup", nil
	}
	return "", fmt.Errorf("cannot detect format of %s; use --format script|markup", path)
}

// sourceLabel derives the compile label from a source path: the base
// name without its extension.
func sourceLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func compileFile(path, format string, opts compiler.Options) (*compiler.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	label := sourceLabel(path)
	log.Infof("compiling %s as %s (label %s)", path, format, label)

	var res *compiler.Result
	switch format {
	case "script":
		res, err = compiler.CompileScript(string(data), label, opts)
	case "markup":
		res, err = compiler.CompileMarkup(string(data), label, opts)
	default:
		return nil, fmt.Errorf("unknown format %q; use script or markup", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
	}
	for _, entry := range res.EntryPoints {
		log.Infof("%s: entry point %s", path, entry)
	}
	log.Infof("%s: %d cells, %d entry points", path, len(res.Cells), len(res.EntryPoints))
	return res, nil
}

func runCompile(path string) error {
	format := flagFormat
	if format == "" {
		var err error
		if format, err = detectFormat(path); err != nil {
			return err
		}
	}

	opts := compiler.Options{MaxCellSize: flagMaxCvarSize, HashLen: flagHashLen}
	res, err := compileFile(path, format, opts)
	if err != nil {
		return err
	}

	out := flagOutput
	if out == "" {
		ext := filepath.Ext(path)
		out = strings.TrimSuffix(path, ext) + ".cfg"
		if out == path {
			return fmt.Errorf("output %s would overwrite the source; use -o", out)
		}
	}

	if err := os.WriteFile(out, []byte(compiler.RenderConfig(res)), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d cells)\n", out, len(res.Cells))
	return nil
}
