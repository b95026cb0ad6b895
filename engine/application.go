package engine

import "github.com/spaghettifunk/vklayout/engine/core"

type ApplicationConfig struct {
	Config core.Config
	// Layout description file to build.
	LayoutPath string
	// Keep running and rebuild the layout whenever the file changes.
	Watch bool
}
