package valkey

import (
	"context"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
)

func TestSupportsTextSearch_False(t *testing.T) {
	s := &Store{}
	if s.SupportsTextSearch(context.Background()) {
		t.Error("Valkey store should NOT support text search")
	}
}

func TestSearchCount_WildcardFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN" && cmd[3] == "resource_v3:*"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("k1"), mock.RedisString("k2"), mock.RedisString("k3")),
		)))

	s := NewStoreForTest(c, "resource_v3:")
	count, err := s.SearchCount(context.Background(), "resource_v3", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}

func TestSearchCount_WildcardWithoutPrefix(t *testing.T) {
	s := NewStoreForTest(nil, "")
	if _, err := s.SearchCount(context.Background(), "resource_v3", "*"); err == nil {
		t.Fatal("expected error without key prefix")
	}
}

func TestSearchCount_NonWildcard(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(5))))

	s := NewStoreForTest(c, "resource_v3:")
	count, err := s.SearchCount(context.Background(), "resource_v3", "@type:{Compute}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5, got %d", count)
	}
}
