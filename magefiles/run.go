//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the sample layout once against the local device.
func (Run) Sample() error {
	mg.Deps(Build.Binary)
	fmt.Println("Building sample layout...")
	return runTool(sampleLayout)
}

// Rebuilds the sample layout whenever it changes.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	return runTool("-watch", sampleLayout)
}
