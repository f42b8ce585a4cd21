// main is the entry point of the benchtrack CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/benchtrack/cmd"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/iocache"
)

func main() {
	defer iocache.CloseHistory()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		iocache.CloseHistory()
		os.Exit(1)
	}
}
