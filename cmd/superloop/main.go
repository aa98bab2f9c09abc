// Command superloop runs the demo applications on a simulated board.
package main

import (
	"os"

	"github.com/comalice/superloop/internal/logger"
)

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
