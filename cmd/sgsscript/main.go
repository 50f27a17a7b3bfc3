// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command sgsscript disassembles engine bytecode scripts and drives
// their string-translation export/import pipeline.
//
// Usage:
//
//	sgsscript disasm -in FILE [-encoding NAME]
//	sgsscript export -in FILE -out FILE [-encoding NAME]
//	sgsscript import -in FILE -edits FILE -out FILE [-encoding NAME] [-max-line-length N]
//	sgsscript batch-export -in DIR -out DIR [-encoding NAME]
//	sgsscript batch-import -in DIR -edits DIR -out DIR [-encoding NAME] [-max-line-length N]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sgstools/sgscodec/script"
	"github.com/sgstools/sgscodec/textcodec"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "disasm":
		err = runDisasm(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "batch-export":
		err = runBatchExport(os.Args[2:])
	case "batch-import":
		err = runBatchImport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sgsscript:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgsscript disasm -in FILE [-encoding NAME]")
	fmt.Fprintln(os.Stderr, "       sgsscript export -in FILE -out FILE [-encoding NAME]")
	fmt.Fprintln(os.Stderr, "       sgsscript import -in FILE -edits FILE -out FILE [-encoding NAME] [-max-line-length N]")
	fmt.Fprintln(os.Stderr, "       sgsscript batch-export -in DIR -out DIR [-encoding NAME]")
	fmt.Fprintln(os.Stderr, "       sgsscript batch-import -in DIR -edits DIR -out DIR [-encoding NAME] [-max-line-length N]")
}

func encodingFlag(fs *flag.FlagSet) *string {
	return fs.String("encoding", textcodec.Default, "text codec for embedded strings")
}

func maxLineLengthFlag(fs *flag.FlagSet) *int {
	return fs.Int("max-line-length", script.DefaultMaxLineLength, "auto-line-break width applied to changed strings")
}

// writeFileAtomic writes to a sibling temp path and renames it over
// dst, so a failed import never leaves a half-written script behind.
func writeFileAtomic(dst string, data []byte) error {
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func printWarnings(name string, warnings []script.Diagnostic) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "sgsscript: %s: %s\n", name, w.Msg)
	}
}

func runDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	in := fs.String("in", "", "script file to disassemble")
	encName := encodingFlag(fs)
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("disasm requires -in")
	}
	enc, err := textcodec.Lookup(*encName)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	lines, _, err := script.Disassemble(buf, enc)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "script file to export strings from")
	out := fs.String("out", "", "destination text file")
	encName := encodingFlag(fs)
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("export requires -in and -out")
	}
	enc, err := textcodec.Lookup(*encName)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	text, err := script.Export(buf, enc)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, []byte(text), 0o644)
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "original script file")
	editsPath := fs.String("edits", "", "edited export-format text file")
	out := fs.String("out", "", "destination patched script file")
	encName := encodingFlag(fs)
	maxLen := maxLineLengthFlag(fs)
	fs.Parse(args)
	if *in == "" || *editsPath == "" || *out == "" {
		return fmt.Errorf("import requires -in, -edits, and -out")
	}
	enc, err := textcodec.Lookup(*encName)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	editText, err := os.ReadFile(*editsPath)
	if err != nil {
		return err
	}
	patched, warnings, err := script.Import(buf, string(editText), enc, *maxLen)
	if err != nil {
		return err
	}
	printWarnings(filepath.Base(*in), warnings)
	return writeFileAtomic(*out, patched)
}

func runBatchExport(args []string) error {
	fs := flag.NewFlagSet("batch-export", flag.ExitOnError)
	in := fs.String("in", "", "directory of script files")
	out := fs.String("out", "", "destination directory of .txt exports")
	encName := encodingFlag(fs)
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("batch-export requires -in and -out")
	}
	enc, err := textcodec.Lookup(*encName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(*in)
	if err != nil {
		return err
	}
	var inputs []script.BatchInput
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(*in, d.Name()))
		if err != nil {
			return err
		}
		inputs = append(inputs, script.BatchInput{Name: d.Name(), Data: buf})
	}

	var exported, skipped int
	for _, r := range script.BatchExport(inputs, enc) {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "sgsscript: skipping %s: %v\n", r.Name, r.Err)
			skipped++
			continue
		}
		destName := strings.TrimSuffix(r.Name, filepath.Ext(r.Name)) + ".txt"
		if err := os.WriteFile(filepath.Join(*out, destName), []byte(r.Text), 0o644); err != nil {
			return err
		}
		exported++
	}
	fmt.Printf("exported %d scripts, skipped %d\n", exported, skipped)
	return nil
}

func runBatchImport(args []string) error {
	fs := flag.NewFlagSet("batch-import", flag.ExitOnError)
	in := fs.String("in", "", "directory of original script files")
	editsDir := fs.String("edits", "", "directory of edited .txt exports")
	out := fs.String("out", "", "destination directory of patched script files")
	encName := encodingFlag(fs)
	maxLen := maxLineLengthFlag(fs)
	fs.Parse(args)
	if *in == "" || *editsDir == "" || *out == "" {
		return fmt.Errorf("batch-import requires -in, -edits, and -out")
	}
	enc, err := textcodec.Lookup(*encName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(*in)
	if err != nil {
		return err
	}
	var inputs []script.BatchImportInput
	var skipped int
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(*in, d.Name()))
		if err != nil {
			return err
		}
		editName := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())) + ".txt"
		editText, err := os.ReadFile(filepath.Join(*editsDir, editName))
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "sgsscript: no edits for %s, copying unchanged\n", d.Name())
				if err := os.WriteFile(filepath.Join(*out, d.Name()), buf, 0o644); err != nil {
					return err
				}
				skipped++
				continue
			}
			return err
		}
		inputs = append(inputs, script.BatchImportInput{Name: d.Name(), Data: buf, EditText: string(editText)})
	}

	var imported int
	for _, r := range script.BatchImport(inputs, enc, *maxLen) {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "sgsscript: skipping %s: %v\n", r.Name, r.Err)
			skipped++
			continue
		}
		printWarnings(r.Name, r.Warnings)
		if err := writeFileAtomic(filepath.Join(*out, r.Name), r.Patched); err != nil {
			return err
		}
		imported++
	}
	fmt.Printf("imported %d scripts, skipped %d\n", imported, skipped)
	return nil
}
