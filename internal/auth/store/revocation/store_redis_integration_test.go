//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"daystack/internal/auth/store/revocation"
	"daystack/pkg/testutil/containers"
)

type RedisListSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	list  *revocation.RedisList
}

func TestRedisListSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisListSuite))
}

func (s *RedisListSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.list = revocation.NewRedis(s.redis.Client)
}

func (s *RedisListSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisListSuite) TestRevokeAndCheck() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.list.IsRevoked(ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisListSuite) TestEntryExpiresWithTTL() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "jti-short", time.Second))

	revoked, err := s.list.IsRevoked(ctx, "jti-short")
	s.Require().NoError(err)
	s.True(revoked)

	time.Sleep(1500 * time.Millisecond)

	revoked, err = s.list.IsRevoked(ctx, "jti-short")
	s.Require().NoError(err)
	s.False(revoked, "entry must expire with its token")
}

func (s *RedisListSuite) TestRejectsNonPositiveTTL() {
	err := s.list.Revoke(context.Background(), "jti-1", 0)
	s.Error(err)
}
