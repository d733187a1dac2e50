// Package main provides the entry point for the tagdict CLI.
//
// tagdict mirrors the SCP wiki tag lists, parses them into structured tag
// records and builds an English to Japanese tag dictionary.
//
// Usage:
//
//	tagdict fetch
//	tagdict run
//	tagdict lookup keter
//
// See --help for all available options.
package main

// main is the entry point for tagdict.
func main() {
	Execute()
}
