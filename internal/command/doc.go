// Package command compiles rule templates into runnable commands:
// placeholder substitution, temporary resource acquisition, shell
// versus argv classification, chain splitting, and automatic existence
// checks before steps that consume temporary paths.
package command
