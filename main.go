// Package main is the entry point for the clausestat CLI.
package main

import "clausestat.dev/pkg/clausestat/cmd"

func main() {
	cmd.Execute()
}
