// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "github.com/sofie-broadcast/playout-core/internal/playout/ids"

// Rundown is an ordered container of Segments, typically one newscast or
// show (spec §3, GLOSSARY).
type Rundown struct {
	ID ids.RundownID `json:"_id"`
	// PlaylistID is the owning playlist, queried by PlayoutCache.Load
	// (spec §4.D step 2) to find every rundown belonging to a playlist.
	PlaylistID           ids.PlaylistID         `json:"playlistId"`
	ExternalID           string                 `json:"externalId"`
	ShowStyleBaseID      ids.ShowStyleBaseID    `json:"showStyleBaseId"`
	ShowStyleVariantID   ids.ShowStyleVariantID `json:"showStyleVariantId"`
	RestoredFromSnapshot *string                `json:"restoredFromSnapshot,omitempty"`
}
