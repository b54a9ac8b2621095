// SPDX-License-Identifier: MIT
package main

import (
	"blockhost/cmd"
	applog "blockhost/internal/log"
	"blockhost/pkg/build"
	"runtime"
)

func main() {
	if err := build.Initialize(); err != nil {
		applog.Fatal(err)
	}

	// One thread for the audio callback, one for the UI and I/O.
	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(); err != nil {
		applog.Fatal(err)
	}
}
