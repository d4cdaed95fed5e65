// Package config provides the configuration system for gridcanvas.
//
// Settings live in a single TOML or YAML file, chosen by extension. Fields
// missing from the file keep their built-in defaults, and unknown keys are
// rejected so that typos surface as parse errors instead of being ignored.
//
// # Sections
//
//	[camera]      zoom range and the level used by "zoom to default"
//	[wheel]       mouse-wheel and trackpad zoom tuning
//	[grid]        world size of one character cell
//	[background]  flat color or transparency checkerboard
//	[glyphs]      text color, whitespace markers, opacity
//	[animation]   frame interval, caret and marching-ants styling
//	palette       color index table for the glyph grid
//	[log]         log level and destination
//
// # Live reload
//
// A Watcher follows the file with fsnotify and hands every successfully
// loaded and validated configuration to a callback. Bursts of writes are
// coalesced by a debounce delay.
package config
