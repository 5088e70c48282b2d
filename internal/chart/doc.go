// Package chart draws polar charts onto a retained drawing surface.
//
// A chart is produced in three steps:
//
//  1. A [Series] of parallel (items, values, groups) sequences is built by the caller.
//  2. A [Template] is resolved by name from a [Registry]. Templates are YAML
//     descriptors that declare which renderer they use and how it is tuned.
//  3. [Template.Draw] clears a [Scene], asks the renderer to fill it with marks
//     in polar coordinates and finally applies the caller's radial bounds.
//
// The Scene is backend independent. The render package turns it into SVG or PNG.
//
// # Renderers
//
// The set of renderer names is closed and registered at init time with
// [RegisterRenderer]. Resolution walks the registered names in priority order
// and picks the first one a descriptor declares:
//
//	circular_scatter_plot_subjects  dot-matrix scatter, 10 dots per item
//	plot_circular_barchart          circular bars grouped with padding gaps
//	category_spider_chart           one closed polygon per group
//	smooth_radar_chart              single series, periodic cubic spline
//
// # Colors
//
// Group colors come from the caller's [ColorMap]. Groups without an entry get a
// color from the template palette, cycled in first-seen group order.
package chart
