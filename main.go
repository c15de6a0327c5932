// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// WireFactory - wire feeding and cutting machine controller

package main

import (
	"os"

	"github.com/golang/glog"

	"github.com/Thermoquad/wirefactory/cmd"
)

func main() {
	err := cmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
