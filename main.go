package main

import "github.com/daxplore/spssreader/cmd"

func main() {
	cmd.Execute()
}
