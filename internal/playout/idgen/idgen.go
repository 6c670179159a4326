// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package idgen produces the random, human-legible ids used for PartInstance
// and PieceInstance creation (spec §6). It draws entropy from
// github.com/google/uuid the way the teacher's internal/log request-id
// helper does, then re-bases that entropy onto the spec's fixed 55-character
// alphabet so generated ids never contain the easily-confused glyphs
// 0, O, I, 1, l.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Alphabet is the fixed, ordered set of legible characters ids are drawn
// from (spec §6). Its length, 55, is not a power of two; re-basing uses
// rejection sampling rather than a bitmask to avoid skew.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTWXYZabcdefghijkmnopqrstuvwxyz"

// Length is the number of characters in a generated id.
const Length = 17

// Fresh returns a new 17-character id drawn from Alphabet. Entropy comes
// from crypto/rand via uuid.NewRandom (two v4 UUIDs comfortably cover the
// bytes needed after rejection sampling).
func Fresh() string {
	return generate(randomBytes)
}

// generate is the alphabet-projection step, separated from the entropy
// source so tests can feed it deterministic bytes.
func generate(source func(n int) []byte) string {
	var b strings.Builder
	b.Grow(Length)

	alphabetLen := byte(len(Alphabet))
	// Reject bytes that would bias the distribution towards the low end of
	// the alphabet: 256 is not a multiple of 55, so bytes >= floor(256/55)*55
	// are discarded and re-drawn.
	limit := byte(256 / int(alphabetLen) * int(alphabetLen))

	for b.Len() < Length {
		chunk := source(Length * 2)
		for _, raw := range chunk {
			if raw >= limit {
				continue
			}
			b.WriteByte(Alphabet[raw%alphabetLen])
			if b.Len() == Length {
				break
			}
		}
	}
	return b.String()
}

func randomBytes(n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		id := uuid.New()
		out = append(out, id[:]...)
	}
	return out[:n]
}

// WithPrefix returns "<prefix>_<fresh 17-char id>", the shape used for new
// PartInstance ids (spec §4.H.1: "<part_id>_<random17>").
func WithPrefix(prefix string) string {
	return prefix + "_" + Fresh()
}
