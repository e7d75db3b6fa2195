// Command coinfolio tracks crypto-asset transactions and computes cost
// basis, valuations and yearly tax reports from them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
