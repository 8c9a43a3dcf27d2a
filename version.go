package planner

import _ "embed"

// Version is the release of the planner module.
//
//go:embed VERSION
var Version string
