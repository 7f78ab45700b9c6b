package services

import (
	"context"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// LeaderboardKey is the sorted set holding every user's point total.
const LeaderboardKey = "leaderboard:points"

// BoardEntry is one member of the points board.
type BoardEntry struct {
	UserID uint
	Points int
}

// Board is a ranked projection of user point totals. The database remains
// the source of truth; a board only serves the unfiltered leaderboard.
type Board interface {
	SetScore(ctx context.Context, userID uint, points int) error
	// Top returns the limit highest scores plus every entry tied with the
	// last of them, ordered by points descending then user id.
	Top(ctx context.Context, limit int) ([]BoardEntry, error)
	Len(ctx context.Context) (int64, error)
	Rebuild(ctx context.Context, entries []BoardEntry) error
}

// RedisBoard keeps the board in a Redis sorted set.
type RedisBoard struct {
	client *redis.Client
	key    string
}

func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client, key: LeaderboardKey}
}

func (b *RedisBoard) SetScore(ctx context.Context, userID uint, points int) error {
	return b.client.ZAdd(ctx, b.key, redis.Z{
		Score:  float64(points),
		Member: member(userID),
	}).Err()
}

func (b *RedisBoard) Top(ctx context.Context, limit int) ([]BoardEntry, error) {
	results, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == limit && limit > 0 {
		// Pull in members tied with the cutoff so ties break on user id.
		floor := strconv.FormatFloat(results[len(results)-1].Score, 'f', -1, 64)
		results, err = b.client.ZRevRangeByScoreWithScores(ctx, b.key, &redis.ZRangeBy{
			Min: floor,
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, err
		}
	}

	entries := make([]BoardEntry, 0, len(results))
	for _, z := range results {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, BoardEntry{UserID: uint(id), Points: int(z.Score)})
	}
	SortEntries(entries)
	return entries, nil
}

func (b *RedisBoard) Len(ctx context.Context) (int64, error) {
	return b.client.ZCard(ctx, b.key).Result()
}

// Rebuild replaces the whole board atomically.
func (b *RedisBoard) Rebuild(ctx context.Context, entries []BoardEntry) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.key)
		if len(entries) == 0 {
			return nil
		}
		members := make([]redis.Z, len(entries))
		for i, e := range entries {
			members[i] = redis.Z{Score: float64(e.Points), Member: member(e.UserID)}
		}
		pipe.ZAdd(ctx, b.key, members...)
		return nil
	})
	return err
}

func member(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// SortEntries orders entries the way the leaderboard ranks users.
func SortEntries(entries []BoardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
}
