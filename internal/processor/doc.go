// Package processor turns fetched collection releases into a QR Factory
// batch CSV.
//
// # Operations
//
//   - [Validate] / [Partition] : presence checks on the mandatory export
//     fields (artist, title, url), reporting every missing field
//   - [Sort] : stable ordering by artist, year, or date added; unknown
//     years always sort last
//   - [GroupByLetter] : letter buckets keyed on the artist's first rune,
//     with a single "#" bucket for non-alphabetic names
//   - [Template] : the two-row QR Factory batch template; [Template.Render]
//     fills the BottomText/Content/FileName data columns per release and
//     copies every other column's constant default
//
// # Export session
//
// [Session] is the wizard's state machine. Operations are only legal in
// stage order; out-of-order calls fail with [SequenceError] naming the
// stage the caller must reach first. Previewing supports an edit loop:
// [Session.Edit] drops a Previewed session back to Selected so overrides
// are always re-validated before rendering.
//
// # Error kinds
//
//   - [ValidationError] : per-release, reported and excluded, never fatal
//   - [TemplateError] : config defect; fails every render until fixed
//   - [SequenceError] : usage error, rejected immediately
package processor
