// Package abstraction folds large clusters of a pixel matrix into a fixed
// width summary.
//
// Every cluster wider than [Threshold] columns is, while folded, shown as its
// first [Keep] columns, [Keep] placeholder columns, and its last [Keep]
// columns. Smaller clusters are always shown verbatim. Folding state lives in
// [Flags], keyed by source cluster index, and is reset whenever the matrix
// is replaced.
//
// [Compute] is a pure function of the matrix, its clusters and the flags.
// The returned [Sequence] carries explicit index maps back into the source
// matrix so that hover and click on a display column can be resolved to an
// item id without searching.
package abstraction
