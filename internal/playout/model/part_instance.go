// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
)

// PartInstanceTimings carries the playout-time timestamps of a PartInstance
// (spec §3).
type PartInstanceTimings struct {
	SetAsNext              time.Time      `json:"setAsNext"`
	PlannedStartedPlayback *time.Time     `json:"plannedStartedPlayback,omitempty"`
	PlannedStoppedPlayback *time.Time     `json:"plannedStoppedPlayback,omitempty"`
	Take                   *time.Time     `json:"take,omitempty"`
	PlayOffset             *time.Duration `json:"playOffset,omitempty"`
}

// PartInstance is a playout occurrence of a Part (spec §3, GLOSSARY). Its
// Part field is an embedded snapshot taken at creation time — edits to the
// source Part after set-next must not retroactively change the taken
// instance's semantics (spec §9 "Embedded snapshots").
type PartInstance struct {
	ID                   ids.PartInstanceID       `json:"_id"`
	RundownID            ids.RundownID            `json:"rundownId"`
	SegmentID            ids.SegmentID            `json:"segmentId"`
	PlaylistActivationID ids.PlaylistActivationID `json:"playlistActivationId"`
	SegmentPlayoutID     ids.SegmentPlayoutID     `json:"segmentPlayoutId"`

	Part Part `json:"part"`

	Orphaned PartInstanceOrphaned `json:"orphaned"`

	Timings PartInstanceTimings `json:"timings"`

	IsTaken   bool `json:"isTaken"`
	TakeCount int  `json:"takeCount"`
	Rehearsal bool `json:"rehearsal"`
	Reset     bool `json:"reset"`

	PartPlayoutTimings    *PartCalculatedTimings `json:"partPlayoutTimings,omitempty"`
	ConsumesNextSegmentID bool                   `json:"consumesNextSegmentId"`
	BlockTakeUntil        *time.Time             `json:"blockTakeUntil,omitempty"`
}

// PartCalculatedTimings is the result of the timings calculator (spec §4.G).
type PartCalculatedTimings struct {
	InTransitionStart *time.Duration `json:"inTransitionStart,omitempty"`
	ToPartDelay       time.Duration  `json:"toPartDelay"`
	ToPartPostroll    time.Duration  `json:"toPartPostroll"`
	FromPartPostroll  time.Duration  `json:"fromPartPostroll"`
	FromPartRemaining time.Duration  `json:"fromPartRemaining"`
}
