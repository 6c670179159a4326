// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// DocID implementations let each collection-backed entity satisfy
// store.Doc without the store package needing to know about ids.

// DocID returns the playlist's id as a plain string.
func (p RundownPlaylist) DocID() string { return p.ID.Unprotect() }

// DocID returns the rundown's id as a plain string.
func (r Rundown) DocID() string { return r.ID.Unprotect() }

// DocID returns the segment's id as a plain string.
func (s Segment) DocID() string { return s.ID.Unprotect() }

// DocID returns the part's id as a plain string.
func (p Part) DocID() string { return p.ID.Unprotect() }

// DocID returns the part-instance's id as a plain string.
func (pi PartInstance) DocID() string { return pi.ID.Unprotect() }

// DocID returns the piece-instance's id as a plain string.
func (pi PieceInstance) DocID() string { return pi.ID.Unprotect() }

// DocID returns the piece's id as a plain string.
func (p Piece) DocID() string { return p.ID.Unprotect() }
