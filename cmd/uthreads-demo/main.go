// Command uthreads-demo runs a set of CPU-bound green threads under the
// uthreads scheduler, and reports how the quanta were shared.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
