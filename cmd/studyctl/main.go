// Command studyctl runs the study core in-process against an in-memory
// store: summarize a file, or study it as a quiz or flashcard deck over
// stdin and stdout.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
