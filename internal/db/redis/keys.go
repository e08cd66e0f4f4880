package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/reindexer/internal/db"
)

// delBatchSize bounds the number of DEL commands pipelined in one round trip.
const delBatchSize = 500

// DelMulti deletes keys with pipelined single-key DELs (cluster safe) and returns how many existed.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += delBatchSize {
		end := min(start+delBatchSize, len(keys))

		cmds := make(rueidis.Commands, 0, end-start)
		for _, key := range keys[start:end] {
			cmds = append(cmds, s.b().Del().Key(key).Build())
		}

		for _, res := range s.client.DoMulti(ctx, cmds...) {
			n, err := res.AsInt64()
			if err != nil {
				return deleted, &db.Error{Op: db.OpDel, Err: err}
			}
			deleted += int(n)
		}
	}
	return deleted, nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
