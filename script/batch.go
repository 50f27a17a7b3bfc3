// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package script

import (
	"sync"

	"golang.org/x/text/encoding"
)

// defaultBatchWorkers bounds how many files a batch operation decodes
// concurrently. Work is only ever parallelized across independent
// files; the operand reads within a single file are always sequential.
const defaultBatchWorkers = 4

// BatchInput is one script file to process in a batch export.
type BatchInput struct {
	Name string
	Data []byte
}

// BatchExportResult is the outcome of exporting one file.
type BatchExportResult struct {
	Name string
	Text string
	Err  error
}

// BatchExport runs Export over every input using a small fixed-size
// worker pool.
func BatchExport(inputs []BatchInput, enc encoding.Encoding) []BatchExportResult {
	results := make([]BatchExportResult, len(inputs))
	runPool(len(inputs), func(i int) {
		text, err := Export(inputs[i].Data, enc)
		results[i] = BatchExportResult{Name: inputs[i].Name, Text: text, Err: err}
	})
	return results
}

// BatchImportInput is one script file plus its edit text for a batch
// import.
type BatchImportInput struct {
	Name     string
	Data     []byte
	EditText string
}

// BatchImportResult is the outcome of importing edits into one file.
type BatchImportResult struct {
	Name     string
	Patched  []byte
	Warnings []Diagnostic
	Err      error
}

// BatchImport runs Import over every input using a small fixed-size
// worker pool.
func BatchImport(inputs []BatchImportInput, enc encoding.Encoding, maxLineLength int) []BatchImportResult {
	results := make([]BatchImportResult, len(inputs))
	runPool(len(inputs), func(i int) {
		patched, warnings, err := Import(inputs[i].Data, inputs[i].EditText, enc, maxLineLength)
		results[i] = BatchImportResult{Name: inputs[i].Name, Patched: patched, Warnings: warnings, Err: err}
	})
	return results
}

// runPool fans work(i) out over a bounded pool of goroutines for i in
// [0, n), blocking until every index has run.
func runPool(n int, work func(i int)) {
	if n == 0 {
		return
	}
	workers := defaultBatchWorkers
	if workers > n {
		workers = n
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				work(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
