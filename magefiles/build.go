//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the vklayout binary into bin/.
func (Build) Binary() error {
	if err := goModTidy(); err != nil {
		return err
	}
	return goRun("build", "-o", binaryPath, ".")
}

// Runs the unit tests with the race detector.
func (Build) Test() error {
	return goRun("test", "-race", "./...")
}

// Runs go vet over the module.
func (Build) Lint() error {
	return goRun("vet", "./...")
}
