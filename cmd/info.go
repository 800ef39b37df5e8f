package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daxplore/spssreader/sav"
)

var infoCmd = &cobra.Command{
	Use:                   "info FILE",
	Short:                 "Print a system file's header and dictionary metadata",
	Long:                  `Open a system file and print its header/extension metadata: creation stamp, compression, byte order, version, and character set.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		f, err := os.Open(filename)
		if err != nil {
			fmt.Println(err)
			return
		}

		reader, dict, info, err := sav.OpenReader(f)
		if err != nil {
			fmt.Println("System file read error!")
			fmt.Println(err)
			os.Exit(1)
		}
		defer reader.Close()

		fmt.Printf("Product:    %s\n", info.ProductName)
		fmt.Printf("Created:    %s %s\n", info.CreationDate, info.CreationTime)
		fmt.Printf("Label:      %s\n", info.FileLabel)
		fmt.Printf("Compressed: %t\n", info.Compressed)
		fmt.Printf("Big-endian: %t\n", info.BigEndian)
		fmt.Printf("Version:    %d.%d.%d\n", info.Version[0], info.Version[1], info.Version[2])
		fmt.Printf("Charset:    %s\n", info.Charset)
		fmt.Printf("Variables:  %d\n", len(dict.Variables))
		if dict.Weight != "" {
			fmt.Printf("Weight:     %s\n", dict.Weight)
		}

		count := 0
		for {
			_, ok, err := reader.ReadCase()
			if err != nil {
				fmt.Println("Case read error!")
				fmt.Println(err)
				os.Exit(1)
			}
			if !ok {
				break
			}
			count++
		}
		fmt.Printf("Cases:      %d\n", count)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
