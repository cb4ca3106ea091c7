// Command transmute is the CLI for converting files between formats
// using configurable external-tool command templates.
package main
