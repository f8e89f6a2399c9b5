// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketLoss(t *testing.T) {
	cases := []struct {
		name string
		seqs []int64
		lost int64
	}{
		{"contiguous", []int64{0, 1, 2, 3}, 0},
		{"first sample is never loss", []int64{100}, 0},
		{"single gap", []int64{1, 2, 5}, 2},
		{"two gaps", []int64{10, 12, 13, 20}, 7},
		{"restart at zero", []int64{40, 41, 0, 1}, 0},
		{"repeat", []int64{7, 7, 8}, 0},
		{"backwards", []int64{9, 4, 5}, 0},
		{"gap after restart", []int64{5, 0, 3}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p PacketLoss
			var got int64
			for _, s := range tc.seqs {
				got = p.Observe(s)
			}
			assert.Equal(t, tc.lost, got)
			assert.Equal(t, tc.lost, p.Lost())
			assert.Equal(t, tc.seqs[len(tc.seqs)-1], p.Last())
		})
	}
}

func TestPacketLossLastBeforeFirst(t *testing.T) {
	var p PacketLoss
	assert.Equal(t, int64(-1), p.Last())
	assert.Equal(t, int64(0), p.Lost())
}
