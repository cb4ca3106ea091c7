// Package preflight validates a conversion before any process starts:
// input readability, output directory permissions, and free disk
// space.
package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckFileReadable verifies the input exists, is a regular file, and
// is readable.
func CheckFileReadable(path string) Result {
	const name = "Input file"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is a directory", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not readable: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryWritable verifies the output directory exists and is
// writable and traversable.
func CheckDirectoryWritable(path string) Result {
	const name = "Output directory"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not writable: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
}

// statfs is swapped in tests.
var statfs = func(path string) (free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckDiskSpace verifies the target filesystem has room for the
// converted output. required is an estimate; conversions routinely
// grow files, so callers pass roughly twice the input size.
func CheckDiskSpace(dir string, required uint64) Result {
	const name = "Disk space"
	free, err := statfs(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot stat filesystem at %s: %v", dir, err)}
	}
	if free < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, %s needed",
			humanize.IBytes(free), humanize.IBytes(required))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

// ForConversion runs every check for one planned conversion. The
// space requirement is twice the input size, which covers the common
// case of a less compact target format plus temp copies.
func ForConversion(inputPath, outputDir string) []Result {
	results := []Result{CheckFileReadable(inputPath)}
	results = append(results, CheckDirectoryWritable(outputDir))

	var required uint64
	if info, err := os.Stat(inputPath); err == nil {
		required = uint64(info.Size()) * 2
	}
	results = append(results, CheckDiskSpace(outputDir, required))
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
