// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

// PacketLoss counts sequence numbers skipped by the vehicle's telemetry
// stream. A sequence of 0 is a restart of the vehicle and never counts as
// loss; neither does a repeated or backwards sequence.
//
// The zero value is ready to use. It is not safe for concurrent use.
type PacketLoss struct {
	last int64
	seen bool
	lost int64
}

// Observe records seq and returns the running total of lost packets.
func (p *PacketLoss) Observe(seq int64) int64 {
	if p.seen && seq != p.last+1 && seq != 0 {
		if gap := seq - p.last - 1; gap > 0 {
			p.lost += gap
		}
	}
	p.last = seq
	p.seen = true
	return p.lost
}

func (p *PacketLoss) Lost() int64 { return p.lost }

// Last returns the last sequence seen, or -1 before the first.
func (p *PacketLoss) Last() int64 {
	if !p.seen {
		return -1
	}
	return p.last
}
