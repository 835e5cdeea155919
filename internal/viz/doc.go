// Package viz is a terminal consumer of the snapshot stream.
//
// [Model] is a Bubble Tea program that receives one snapshot at a time from
// a [Source], projects the particles onto a braille [Canvas] and colours
// each cell by the density band of the particles drawn into it. A chart of
// the maximum density per tick sits beside the canvas.
//
// # Key Bindings
//
//	Space - Pause (the producer waits once the buffer fills)
//	x/y/z - Rotate the view, shifted to rotate back
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit and close the receive side
package viz
