// package models defines the data model for the collection export tool
package models

import "time"

// Release is one item in a collection folder, built from a Discogs API
// response and immutable afterwards. Edits happen on copies via
// [FieldOverride], never in place.
type Release struct {
	ID        int64     `json:"id"`
	Artist    string    `json:"artist"` // all credited artists, joined with ", "
	Title     string    `json:"title"`
	Year      int       `json:"year"` // 0 means unknown
	URL       string    `json:"url"`  // canonical release page
	DateAdded time.Time `json:"date_added"`
}

// KnownYear reports whether the release carries a usable year.
func (r Release) KnownYear() bool {
	return r.Year > 0
}

// Folder is a named grouping of releases in a user's collection. Folders
// do not nest.
type Folder struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Identity is the authenticated Discogs user, returned by the identity
// probe after the OAuth handshake completes.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// FieldOverride carries optional user edits for a single release before
// export. Nil fields keep the original value. Only the three mandatory
// export fields are editable.
type FieldOverride struct {
	Artist *string `json:"artist,omitempty"`
	Title  *string `json:"title,omitempty"`
	URL    *string `json:"url,omitempty"`
}

// Apply returns a copy of r with the override's non-nil fields replaced.
// The receiver release is never mutated.
func (o FieldOverride) Apply(r Release) Release {
	if o.Artist != nil {
		r.Artist = *o.Artist
	}
	if o.Title != nil {
		r.Title = *o.Title
	}
	if o.URL != nil {
		r.URL = *o.URL
	}
	return r
}
