package main

import "github.com/xrpfuzzy/fuzzy-community-hub/cmd/fuzzyhub/cmd"

func main() {
	cmd.Execute()
}
