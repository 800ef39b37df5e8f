package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/daxplore/spssreader/sav"
)

var convertCompress bool

var convertCmd = &cobra.Command{
	Use:                   "convert SRC... DST",
	Short:                 "Rewrite one or more system files",
	Long:                  `Read each SRC system file (a path or a glob pattern) and rewrite it to DST, a directory when more than one source matches. Exercises the full read-then-write round trip.`,
	Args:                  cobra.MinimumNArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		dst := args[len(args)-1]
		patterns := args[:len(args)-1]

		var sources []string
		for _, pattern := range patterns {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			if len(matches) == 0 {
				sources = append(sources, pattern)
				continue
			}
			sources = append(sources, matches...)
		}

		multi := len(sources) > 1
		if multi {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		for _, src := range sources {
			outPath := dst
			if multi {
				outPath = filepath.Join(dst, filepath.Base(src))
			}
			if err := convertOne(src, outPath); err != nil {
				fmt.Printf("%s: %v\n", src, err)
				os.Exit(1)
			}
		}
	},
}

func convertOne(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	reader, dict, _, err := sav.OpenReader(in)
	if err != nil {
		return err
	}
	defer reader.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	opts := sav.DefaultWriteOptions()
	opts.Compress = convertCompress

	writer, err := sav.OpenWriter(out, dict, opts)
	if err != nil {
		return err
	}

	for {
		c, ok, err := reader.ReadCase()
		if err != nil {
			writer.Close()
			return err
		}
		if !ok {
			break
		}
		if err := writer.WriteCase(c); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}

func init() {
	convertCmd.Flags().BoolVar(&convertCompress, "compress", true, "compress case data in the output file")
	rootCmd.AddCommand(convertCmd)
}
