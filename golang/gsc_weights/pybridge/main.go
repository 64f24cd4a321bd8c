// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/tarstars/gsc_weighting/golang/gsc_weights/gscl"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	trees             = make(map[uint64]gscl.Tree)

	// message of the failure of the latest exported call, "" after a success
	lastError atomic.Value
)

func recordError(err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	lastError.Store(message)
}

func lastErrorMessage() string {
	message, _ := lastError.Load().(string)
	return message
}

func storeTree(tree gscl.Tree) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	trees[handle] = tree
	nextHandle++
	return handle
}

func fetchTree(handle uint64) (gscl.Tree, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	tree, ok := trees[handle]
	if !ok {
		return nil, errors.New("invalid tree handle")
	}
	return tree, nil
}

//export ParseTree
func ParseTree(newick *C.char) C.ulonglong {
	recordError(nil)
	if newick == nil {
		recordError(errors.New("null tree description"))
		return 0
	}
	tree, err := gscl.ParseNewick(C.GoString(newick))
	if err != nil {
		recordError(err)
		return 0
	}
	if _, err := gscl.LeafCount(tree); err != nil {
		recordError(err)
		return 0
	}
	return C.ulonglong(storeTree(tree))
}

//export FreeTree
func FreeTree(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(trees, uint64(handle))
}

//export LeafCount
func LeafCount(handle C.ulonglong) C.int {
	recordError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		recordError(err)
		return -1
	}
	count, err := gscl.LeafCount(tree)
	if err != nil {
		recordError(err)
		return -1
	}
	return C.int(count)
}

//export ComputeWeights
func ComputeWeights(handle C.ulonglong, normalise C.int, threadsNum C.int) *C.char {
	recordError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		recordError(err)
		return nil
	}

	propagator := gscl.NewPropagator(gscl.PropagatorParams{ThreadsNum: int(threadsNum)})
	scores, err := propagator.GSC(tree, normalise != 0)
	if err != nil {
		recordError(err)
		return nil
	}

	byteRepr, err := json.Marshal(scores)
	if err != nil {
		recordError(err)
		return nil
	}
	return C.CString(string(byteRepr))
}

//export GetLastError
func GetLastError() *C.char {
	if message := lastErrorMessage(); message != "" {
		return C.CString(message)
	}
	return nil
}

//FreeResult releases a string returned by ComputeWeights or GetLastError.
//
//export FreeResult
func FreeResult(result *C.char) {
	C.free(unsafe.Pointer(result))
}

func main() {}
