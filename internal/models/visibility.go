package models

// Visible reports whether content owned by ownerID with the given publish
// state may be shown to viewerID. Unpublished content is visible only to
// its owner; an empty viewerID (anonymous read) sees published content
// only. List queries mirror this predicate in SQL so unpublished rows
// never leak through a join.
func Visible(ownerID string, published bool, viewerID string) bool {
	if published {
		return true
	}
	return viewerID != "" && viewerID == ownerID
}

// VideoVisibleTo applies the visibility predicate to a video.
func VideoVisibleTo(v Video, viewerID string) bool {
	return Visible(v.OwnerID, v.IsPublished, viewerID)
}

// PlaylistVisibleTo applies the visibility predicate to a playlist.
func PlaylistVisibleTo(p Playlist, viewerID string) bool {
	return Visible(p.OwnerID, p.IsPublished, viewerID)
}
