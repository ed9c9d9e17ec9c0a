// Package nodelink renders a seat assignment as a node-link diagram.
//
// Each entry becomes a node and two entries are linked when their seat blocks
// touch somewhere in the chart. The diagram is a quick way to review who sits
// next to whom before a broadcast without drawing the hemicycle itself.
//
//	dot := nodelink.ToDOT(a, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
