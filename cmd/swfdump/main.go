// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saferwall/swfabc"
	"github.com/saferwall/swfabc/swf"
)

var (
	wantPool       bool
	wantMethods    bool
	wantClasses    bool
	wantScripts    bool
	wantDisasm     bool
	wantBinaryData bool
	wantAll        bool
	concurrent     bool
)

func prettyPrint(buf []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "\t"); err != nil {
		log.Println("JSON parse error:", err)
		return string(buf)
	}
	return out.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpUnit(name string, u *abc.Unit) {
	fmt.Printf("--- DoABC %q ---\n", name)

	if wantPool || wantAll {
		pool, _ := json.Marshal(u.Pool)
		fmt.Println(prettyPrint(pool))
	}
	if wantMethods || wantAll {
		methods, _ := json.Marshal(u.Methods)
		fmt.Println(prettyPrint(methods))
	}
	if wantClasses || wantAll {
		classes, _ := json.Marshal(u.Classes)
		fmt.Println(prettyPrint(classes))
	}
	if wantScripts || wantAll {
		scripts, _ := json.Marshal(u.Scripts)
		fmt.Println(prettyPrint(scripts))
	}
	if wantDisasm || wantAll {
		for i, body := range u.Bodies {
			stream, err := abc.Disassemble(body.Code)
			if err != nil {
				log.Printf("method body %d: %v", i, err)
				continue
			}
			for _, inst := range stream.Instructions {
				fmt.Printf("  %6d  %s %v\n", inst.Address, inst.Mnemonic, inst.Args)
			}
		}
	}
}

func dumpSWF(filename string, cmd *cobra.Command) {
	log.Printf("processing %s", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		log.Printf("error reading %s: %v", filename, err)
		return
	}

	file, err := swf.NewBytes(data, &swf.Options{Concurrent: concurrent})
	if err != nil {
		log.Printf("error parsing %s: %v", filename, err)
		return
	}

	for name, unit := range file.ABCs {
		dumpUnit(name, unit)
	}

	if wantBinaryData || wantAll {
		for tag, blob := range file.BinaryData {
			fmt.Printf("binary data tag=%d len=%d\n", tag, len(blob))
		}
		for tag, sym := range file.Symbols {
			fmt.Printf("symbol tag=%d name=%s\n", tag, sym)
		}
	}
}

func dump(cmd *cobra.Command, args []string) {
	path := args[0]

	if !isDirectory(path) {
		dumpSWF(path, cmd)
		return
	}

	var files []string
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	for _, f := range files {
		dumpSWF(f, cmd)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "swfdump",
		Short: "An SWF/AVM2 ABC file parser and disassembler",
		Long:  "Parses SWF containers, decodes every embedded ABC unit, and disassembles method bodies.",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("swfdump 0.0.1")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [file or directory]",
		Short: "Dumps ABC structures found in an SWF file",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	dumpCmd.Flags().BoolVar(&wantPool, "pool", false, "dump constant pools")
	dumpCmd.Flags().BoolVar(&wantMethods, "methods", false, "dump method signatures")
	dumpCmd.Flags().BoolVar(&wantClasses, "classes", false, "dump class/instance traits")
	dumpCmd.Flags().BoolVar(&wantScripts, "scripts", false, "dump script traits")
	dumpCmd.Flags().BoolVar(&wantDisasm, "disasm", false, "disassemble method bodies")
	dumpCmd.Flags().BoolVar(&wantBinaryData, "binary-data", false, "list DefineBinaryData/SymbolClass entries")
	dumpCmd.Flags().BoolVar(&wantAll, "all", false, "dump everything")
	dumpCmd.Flags().BoolVar(&concurrent, "concurrent", false, "decode ABC units concurrently")

	rootCmd.AddCommand(versionCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
