// Package cmd - decode command
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synergism-calc/adapters/savefile"
	"synergism-calc/internal/errors"
)

var (
	decodePretty bool
	decodeChunk  int
)

// decodeCmd prints the JSON inside a save export
var decodeCmd = &cobra.Command{
	Use:   "decode <save>",
	Short: "Print the JSON document inside a save export",
	Long: `Decode a base64 save export and print the JSON it wraps.

With --chunk the output is split into numbered parts small enough to
paste into the game's import box one at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodePretty, "pretty", false, "indent the JSON")
	decodeCmd.Flags().IntVar(&decodeChunk, "chunk", 0, fmt.Sprintf("split output into parts of this many characters (the game accepts %d)", savefile.ExportChunkSize))
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(errors.TypeInput, err, "cannot read save %s", args[0])
	}

	doc, err := savefile.Decode(raw)
	if err != nil {
		return err
	}
	if decodePretty {
		if doc, err = savefile.Pretty(doc); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if decodeChunk <= 0 {
		fmt.Fprintln(out, string(doc))
		return nil
	}

	parts := savefile.Chunks(string(doc), decodeChunk)
	for i, part := range parts {
		fmt.Fprintf(out, "--- part %d/%d ---\n%s\n", i+1, len(parts), part)
	}
	return nil
}
