// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldCorrelationID = "correlation_id"
	FieldJobID         = "job_id"

	// Entity fields
	FieldPlaylistID     = "playlist_id"
	FieldRundownID      = "rundown_id"
	FieldSegmentID      = "segment_id"
	FieldPartID         = "part_id"
	FieldPartInstanceID = "part_instance_id"
	FieldPieceID        = "piece_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
