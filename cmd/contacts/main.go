// main is the entry point for the contacts CLI.
package main

import (
	"os"

	"github.com/huangsam/contacts/cmd"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/iocache"
)

func main() {
	err := cmd.Execute()

	cmd.DumpMetrics()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		_, _ = contract.ErrorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
