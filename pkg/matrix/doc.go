// Package matrix defines the data model shared by the pixel views.
//
// A [Matrix] is an ordered sequence of [Column]s. Each column is one item
// (a network in the motif view, a node in the graphlet view) and carries the
// item's row vector of scores. Column order is significant: it reflects a
// sort or cluster order computed upstream and is never changed here.
//
// A [Cluster] is a half-open range over column positions. The clusters of one
// matrix always form a total, non-overlapping, ascending partition of
// [0, Len()), see [ValidatePartition].
//
// Provider payloads come in two shapes that share the matrix + clusters base:
// [MotifPayload] (significance profiles) and [GraphletPayload] (graphlet
// degree vectors of one network). Both implement [Payload]; switch on
// [Payload.Kind] rather than inspecting fields.
package matrix
