package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type memoryBoard struct {
	mu     sync.Mutex
	scores map[uint]int
	err    error
}

func newMemoryBoard() *memoryBoard {
	return &memoryBoard{scores: make(map[uint]int)}
}

func (b *memoryBoard) SetScore(_ context.Context, userID uint, points int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.scores[userID] = points
	return nil
}

func (b *memoryBoard) Top(_ context.Context, limit int) ([]BoardEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	entries := make([]BoardEntry, 0, len(b.scores))
	for id, p := range b.scores {
		entries = append(entries, BoardEntry{UserID: id, Points: p})
	}
	SortEntries(entries)
	if len(entries) > limit {
		cut := limit
		for cut < len(entries) && entries[cut].Points == entries[limit-1].Points {
			cut++
		}
		entries = entries[:cut]
	}
	return entries, nil
}

func (b *memoryBoard) Len(context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	return int64(len(b.scores)), nil
}

func (b *memoryBoard) Rebuild(_ context.Context, entries []BoardEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.scores = make(map[uint]int, len(entries))
	for _, e := range entries {
		b.scores[e.UserID] = e.Points
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
