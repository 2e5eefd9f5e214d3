// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/saferwall/minidump"
)

func prettyPrint(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unmarshalable: %v>", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "\t"); err != nil {
		return string(raw)
	}
	return pretty.String()
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]

	md, err := minidump.ReadPath(path, nil)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer md.Close()

	printStream := func(kind minidump.StreamKind, label string) {
		v, err := md.GetStream(kind)
		if err != nil {
			log.Printf("%s: %v", label, err)
			return
		}
		fmt.Println(prettyPrint(v))
	}

	if systemInfo || all {
		printStream(minidump.SystemInfoStream, "system info")
	}
	if threads || all {
		printStream(minidump.ThreadListStream, "threads")
	}
	if modules || all {
		printStream(minidump.ModuleListStream, "modules")
	}
	if memory || all {
		printStream(minidump.MemoryListStream, "memory")
	}
	if exception || all {
		printStream(minidump.ExceptionStream, "exception")
	}
	if miscInfo || all {
		printStream(minidump.MiscInfoStream, "misc info")
	}
	if breakpad || all {
		printStream(minidump.BreakpadInfoStream, "breakpad info")
		printStream(minidump.AssertionInfoStream, "assertion info")
	}

	if len(md.Anomalies) > 0 {
		log.Println("anomalies:")
		for _, a := range md.Anomalies {
			log.Println(" -", a)
		}
	}

	return nil
}
