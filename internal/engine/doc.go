// Package engine runs a filter over an image tile by tile in parallel.
//
// ProcessImage decomposes the source buffer into tiles, starts one task per
// tile inside an errgroup, and merges the outputs once every task has
// finished. The first tile failure cancels the group: tasks that have not
// started yet are skipped, while a filter call already in progress runs to
// completion and its output is discarded. A failed run never returns a
// partial buffer.
//
// Filters see only the pixels of their own tile. Convolution filters such as
// blur therefore show seams along tile boundaries that a whole-image run
// would not produce. Pointwise filters give the same result as a single-tile
// run.
//
// ProcessImages runs the single-image pipeline over several images
// concurrently, each with its own metrics.
package engine
