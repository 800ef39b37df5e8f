package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daxplore/spssreader/sav"
)

var dumpValues int

var dumpCmd = &cobra.Command{
	Use:                   "dump FILE",
	Short:                 "Print a system file's dictionary and case data",
	Long:                  `Open a system file, print its variable list (short name, type and width, label, value labels), then stream its cases.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		f, err := os.Open(filename)
		if err != nil {
			fmt.Println(err)
			return
		}

		reader, dict, _, err := sav.OpenReader(f)
		if err != nil {
			fmt.Println("System file read error!")
			fmt.Println(err)
			os.Exit(1)
		}
		defer reader.Close()

		for _, v := range dict.Variables {
			kind := "numeric"
			if !v.IsNumeric() {
				kind = fmt.Sprintf("string(%d)", v.Width)
			}
			fmt.Printf("%-8s %-14s %s\n", v.ShortName, kind, v.Label)
			for val, label := range v.Labels {
				fmt.Printf("    %v = %q\n", val, label)
			}
		}
		fmt.Println()

		printed := 0
		for dumpValues <= 0 || printed < dumpValues {
			c, ok, err := reader.ReadCase()
			if err != nil {
				fmt.Println("Case read error!")
				fmt.Println(err)
				os.Exit(1)
			}
			if !ok {
				break
			}
			row := make([]string, len(dict.Variables))
			for i, v := range c {
				row[i] = v.String()
			}
			fmt.Println(row)
			printed++
		}
	},
}

func init() {
	dumpCmd.Flags().IntVarP(&dumpValues, "values", "n", 0, "number of cases to print (default all)")
	rootCmd.AddCommand(dumpCmd)
}
