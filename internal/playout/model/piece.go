// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
)

// Piece is a static playable media/control element anchored to a Part,
// Segment or Rundown depending on its Lifespan (spec §3).
type Piece struct {
	ID ids.PieceID `json:"_id"`

	StartPartID    ids.PartID    `json:"startPartId"`
	StartSegmentID ids.SegmentID `json:"startSegmentId"`
	StartRundownID ids.RundownID `json:"startRundownId"`

	Enable           PieceEnable   `json:"enable"`
	Lifespan         PieceLifespan `json:"lifespan"`
	PrerollDuration  time.Duration `json:"prerollDuration"`
	PostrollDuration time.Duration `json:"postrollDuration"`

	SourceLayerID    string    `json:"sourceLayerId"`
	ExclusiveGroupID string    `json:"exclusiveGroupId"`
	PieceType        PieceType `json:"pieceType"`
	Virtual          bool      `json:"virtual"`
	ExtendOnHold     bool      `json:"extendOnHold"`
	Invalid          bool      `json:"invalid"`
}
