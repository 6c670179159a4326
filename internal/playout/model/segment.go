// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "github.com/sofie-broadcast/playout-core/internal/playout/ids"

// Segment is an ordered container of Parts within a Rundown (spec §3).
type Segment struct {
	ID        ids.SegmentID   `json:"_id"`
	RundownID ids.RundownID   `json:"rundownId"`
	Rank      float64         `json:"rank"`
	Orphaned  SegmentOrphaned `json:"orphaned"`
}
