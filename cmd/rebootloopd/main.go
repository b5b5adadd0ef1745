// Command rebootloopd records every boot and requests malfunction mode when
// the device keeps rebooting too quickly.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
