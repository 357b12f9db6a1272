/*
argfuscator (Entry Point)

This tool rewrites a command line into equivalent variants that the target
program still parses the same way. It is meant for testing command-line
detection rules against argument obfuscation.
*/
package main

import (
	"github.com/ticofookfook/argfuscator/cmd/argfuscator/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
