// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ids defines the opaque, pairwise-incompatible typed identifiers
// used throughout the playout core (spec §4.A). Each id kind is its own Go
// type so that, for example, a PartId can never be passed where a SegmentId
// is expected; the underlying string is only reachable through Unprotect,
// which is meant to be called at the store boundary (§4.C) and nowhere else.
package ids

// PartID identifies a static Part document.
type PartID string

// SegmentID identifies a static Segment document.
type SegmentID string

// RundownID identifies a static Rundown document.
type RundownID string

// PlaylistID identifies a RundownPlaylist document.
type PlaylistID string

// PlaylistActivationID identifies one activation of a playlist; it changes
// every time the playlist transitions from inactive to active.
type PlaylistActivationID string

// SegmentPlayoutID identifies one playout occurrence of a segment, shared by
// every PartInstance created while the playhead is in that segment visit.
type SegmentPlayoutID string

// PartInstanceID identifies a playout occurrence of a Part.
type PartInstanceID string

// PieceID identifies a static Piece document.
type PieceID string

// PieceInstanceID identifies a playout occurrence of a Piece.
type PieceInstanceID string

// PieceInstanceInfiniteID identifies one continuous "thread" of an infinite
// piece as it is re-instantiated across parts; see PieceInstance.Infinite.
type PieceInstanceInfiniteID string

// ShowStyleBaseID identifies a show style base document.
type ShowStyleBaseID string

// ShowStyleVariantID identifies a show style variant document.
type ShowStyleVariantID string

// Unprotect returns the underlying string. Call only at the store boundary
// (§4.C) — never to build derived ids or perform substring logic on it.
func (id PartID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id SegmentID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id RundownID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PlaylistID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PlaylistActivationID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id SegmentPlayoutID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PartInstanceID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PieceID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PieceInstanceID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id PieceInstanceInfiniteID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id ShowStyleBaseID) Unprotect() string { return string(id) }

// Unprotect returns the underlying string.
func (id ShowStyleVariantID) Unprotect() string { return string(id) }
