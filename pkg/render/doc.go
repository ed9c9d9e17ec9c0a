// Package render holds the diagram renderers of hemicycle.
//
// Pixel output of the chart itself is left to broadcast graphics systems,
// which consume frames as JSON. The [nodelink] subpackage renders the entry
// adjacency of a seat assignment through Graphviz for review.
package render
