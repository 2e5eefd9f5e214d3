// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	all        bool
	systemInfo bool
	threads    bool
	modules    bool
	memory     bool
	exception  bool
	miscInfo   bool
	breakpad   bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "mddump",
		Short: "A Windows minidump parser",
		Long:  "Dumps the streams of a Windows minidump file",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <file.dmp>",
		Short: "Dumps the streams of a minidump file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}

	dumpCmd.Flags().BoolVarP(&systemInfo, "sysinfo", "", false, "Dump the system info stream")
	dumpCmd.Flags().BoolVarP(&threads, "threads", "", false, "Dump the thread list")
	dumpCmd.Flags().BoolVarP(&modules, "modules", "", false, "Dump the module list")
	dumpCmd.Flags().BoolVarP(&memory, "memory", "", false, "Dump the memory range list")
	dumpCmd.Flags().BoolVarP(&exception, "exception", "", false, "Dump the exception record")
	dumpCmd.Flags().BoolVarP(&miscInfo, "miscinfo", "", false, "Dump the misc info stream")
	dumpCmd.Flags().BoolVarP(&breakpad, "breakpad", "", false, "Dump Breakpad-specific streams")
	dumpCmd.Flags().BoolVarP(&all, "all", "", false, "Dump every recognized stream")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
