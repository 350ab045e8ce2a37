// Package game drives one running simulation: the tick loop, the
// deferred task dispatch, autosave accounting, and the notice board
// the player reads feedback from.
package game

import (
	"go.uber.org/zap"
)

// Notice is one board entry. Expires is the first tick it is no
// longer shown on.
type Notice struct {
	Text    string
	Expires uint64
}

// Board collects short-lived player-facing messages. One instance per
// session; entries age out in ticks.
type Board struct {
	ttl     uint64
	notices []Notice
	log     *zap.Logger
}

// NewBoard returns a board whose entries live for ttl ticks.
func NewBoard(ttl uint64, log *zap.Logger) *Board {
	return &Board{ttl: ttl, log: log}
}

// Post appends text to the board, expiring ttl ticks after now.
func (b *Board) Post(now uint64, text string) {
	b.notices = append(b.notices, Notice{Text: text, Expires: now + b.ttl})
	b.log.Debug("notice posted", zap.String("text", text), zap.Uint64("tick", now))
}

// Expire drops every entry whose time is up at now.
func (b *Board) Expire(now uint64) {
	kept := b.notices[:0]
	for _, n := range b.notices {
		if n.Expires > now {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(b.notices); i++ {
		b.notices[i] = Notice{}
	}
	b.notices = kept
}

// Notices returns the live entries, oldest first.
func (b *Board) Notices() []Notice {
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}
