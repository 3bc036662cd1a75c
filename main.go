// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/locamap/locamap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
