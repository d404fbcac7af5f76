package main

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

// generate runs checkpoint-addressed generation. The returned buffer is
// owned by the caller and must be released with free_memory exactly once.
//
//export generate
func generate(prompt, adapterID, checkpointPath *C.char) *C.char {
	text := bridge.Generate(goString(prompt), goString(adapterID), goString(checkpointPath))
	return cString(text)
}

// free_memory releases a buffer returned by generate. nil is a no-op.
//
//export free_memory
func free_memory(p *C.char) {
	if p == nil {
		return
	}
	C.free(unsafe.Pointer(p))
}

func goString(p *C.char) string {
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

// cString copies s into a C.malloc'ed NUL-terminated buffer.
func cString(s string) *C.char { return C.CString(s) }
