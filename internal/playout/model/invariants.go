// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// PartInstanceRundownSegmentConsistent checks invariant 1: the embedded
// Part's rundown_id/segment_id equals the PartInstance's own.
func PartInstanceRundownSegmentConsistent(pi PartInstance) bool {
	return pi.Part.RundownID == pi.RundownID && pi.Part.SegmentID == pi.SegmentID
}

// PieceInstanceInfiniteContinuationValid checks invariant 2: a PieceInstance
// with a set Infinite record either starts a fresh thread (index 0) or is a
// continuation pinned to Offset(0).
func PieceInstanceInfiniteContinuationValid(pci PieceInstance) bool {
	if pci.Infinite == nil {
		return true
	}
	return pci.Infinite.InfiniteInstanceIndex == 0 || pci.Piece.Enable.Start.IsZeroOffset()
}
