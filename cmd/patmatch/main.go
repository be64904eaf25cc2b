// patmatch finds known multi-word patterns in free-form text.
// One binary: batch matching over files, or a socket daemon for services.
package main

import (
	"os"

	"github.com/corey/patmatch/cmd/patmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
