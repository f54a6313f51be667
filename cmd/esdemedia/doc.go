// Package main hosts the esdemedia CLI entrypoint and command graph.
//
// The root command runs one optimisation pass over an ES-DE ROM tree:
// gamelists are relocated, media folders are mirrored, and videos, images
// and manuals are shrunk on the way. The status and config subcommands help
// prepare a machine before the first run. Configuration resolution, logging
// setup and the run lock are handled here.
package main
