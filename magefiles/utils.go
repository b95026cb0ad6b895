//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binaryPath   = "bin/vklayout"
	configPath   = "assets/vklayout.toml"
	sampleLayout = "assets/layouts/sample.toml"
)

// goRun runs a go subcommand with its output attached to the terminal.
func goRun(args ...string) error {
	fmt.Printf("Executing: go %s\n", strings.Join(args, " "))
	if err := sh.RunV("go", args...); err != nil {
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}

// runTool starts the built binary against the sample config.
func runTool(args ...string) error {
	args = append([]string{"-config", configPath}, args...)
	fmt.Printf("Executing: %s %s\n", binaryPath, strings.Join(args, " "))
	return sh.RunV(binaryPath, args...)
}

// goModTidy keeps quiet unless tidy fails.
func goModTidy() error {
	out, err := sh.Output("go", "mod", "tidy")
	if err != nil {
		fmt.Println(out)
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
