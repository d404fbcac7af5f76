// Command libadapterd is the C shared library build of adapterd.
//
//	go build -buildmode=c-shared -o libadapterd.so ./cmd/libadapterd
//
// It exports generate and free_memory; see exports.go.
package main

import "adapterd/internal/ffi"

var bridge = ffi.NewBridge(ffi.FromEnv)

// main is required by -buildmode=c-shared and never runs.
func main() {}
