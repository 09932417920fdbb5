// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// add_license_header.go: Add or check license headers in project files
// Usage: go run add_license_header.go -dir <root> [--check]

package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

//go:embed license_header.txt
var licenseHeader string

func main() {
	checkOnly := flag.Bool("check", false,
		"Check mode: only verify headers, do not modify files")

	var targetDir string
	flag.StringVar(&targetDir, "dir", "",
		"Target directory to start processing files from. This flag is required to run.")

	flag.Parse()

	if len(targetDir) <= 0 {
		log.Fatal("Please provide a directory to look for files, use -dir\n")
	}
	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		log.Fatalf("Invalid target directory: '%s'\n", targetDir)
	}
	fmt.Printf("Processing files in directory: %s\n", targetDir)

	// Patterns that start with a dot (.) are treated as file extensions,
	// while others are treated as specific file names. The value is the
	// comment prefix put in front of every header line.
	patterns := map[string]string{
		".go":    "//",
		"go.mod": "//",
		".yml":   "#",
		".yaml":  "#",
	}

	ignore := []string{"/_examples/", "/build/", "/testdata/"}

	for ext, prefix := range patterns {
		fmt.Printf("Processing files with pattern %s using prefix '%s'\n", ext, prefix)
		err := processFiles(targetDir, ext, prefix, licenseHeader, *checkOnly, ignore)
		if err != nil {
			log.Fatalf("Error processing files with pattern %s: %v\n", ext, err)
		}
	}
}

// processFiles walks through the directory tree starting from dir, finds
// files matching the pattern and adds or checks their license header.
func processFiles(dir, ext, prefix, license string, checkOnly bool, ignore []string) error {
	licenseHeader := addPrefix(license, prefix)
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if shouldIgnore(path, ignore) {
			return nil
		}
		if matchPattern(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory %s: %v", dir, err)
	}
	anyFails := false
	for _, f := range files {
		if err := processFile(f, licenseHeader, checkOnly); err != nil {
			fmt.Println(err)
			if !checkOnly {
				return err
			}
			anyFails = true
		}
		if checkOnly {
			if err := checkDoubleHeader(f, prefix); err != nil {
				fmt.Println(err)
				anyFails = true
			}
		}
	}
	if anyFails {
		return fmt.Errorf("some files do not have the correct license header or have double headers")
	}
	return nil
}

// processFile checks if the file has the correct license header and corrects
// it if requested. An outdated header at the top of the file is replaced,
// a missing one is added, a correct one is left alone.
func processFile(file, licenseHeader string, checkOnly bool) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", file, err)
	}

	if strings.HasPrefix(string(content), "// Code generated") {
		return nil // skip generated files
	}

	lines := strings.Split(string(content), "\n")
	licenseLines := strings.Split(strings.TrimSuffix(licenseHeader, "\n"), "\n")
	needsUpdate := false

	for i, l := range licenseLines {
		if i >= len(lines) || strings.TrimSpace(lines[i]) != strings.TrimSpace(l) {
			needsUpdate = true
			break
		}
	}
	if !needsUpdate {
		return nil
	}
	if checkOnly {
		return fmt.Errorf("missing or incorrect license header: %s", file)
	}

	// An old header is recognized by a leading copyright line and removed
	// up to the first empty line.
	if strings.Contains(lines[0], "Copyright") {
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				content = []byte(strings.Join(lines[i+1:], "\n"))
				break
			}
		}
	}

	newContent := licenseHeader + "\n" + string(content)
	return os.WriteFile(file, []byte(newContent), 0644)
}

func checkDoubleHeader(path, prefix string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}

	lines := strings.Split(string(content), "\n")

	// without a leading copyright line there is no header to double up
	if !strings.Contains(lines[0], "Copyright") {
		return nil
	}
	for i, line := range lines[1:] {
		if strings.Contains(line, prefix+" Copyright") {
			return fmt.Errorf("double license header found in %s at line %d: %s", path, i+1, line)
		}
	}
	return nil
}

// shouldIgnore checks if the file path should be skipped.
func shouldIgnore(path string, ignoredPaths []string) bool {
	for _, pathFragment := range ignoredPaths {
		if strings.Contains(path, pathFragment) {
			return true
		}
	}
	return false
}

func matchPattern(path, pat string) bool {
	if pat[0] == '.' {
		return strings.HasSuffix(path, pat)
	}
	return filepath.Base(path) == pat
}

func addPrefix(license, prefix string) string {
	var buf bytes.Buffer
	s := bufio.NewScanner(strings.NewReader(license))
	for s.Scan() {
		line := s.Text()
		if line == "" {
			buf.WriteString(prefix + "\n")
		} else {
			buf.WriteString(prefix + " " + line + "\n")
		}
	}
	return buf.String()
}
