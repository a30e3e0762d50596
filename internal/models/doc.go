// Package models defines the plain records exchanged between the Discogs
// client, the collection processor, and the export surfaces.
//
// The types here are Data Transfer Objects:
//   - [Release] : one collection item with the fields the exporter needs
//   - [Folder] : a named release grouping from the user's collection
//   - [Identity] : the authenticated user returned by the identity probe
//   - [FieldOverride] : optional pre-export edits, applied to copies
//
// Records are created by the validating deserializer in internal/services
// and treated as immutable afterwards; the processor works on copies.
package models
