package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *RedisCache
}

func (s *RedisCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedisCache(db, time.Minute)
}

func (s *RedisCacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedisCacheTestSuite) TestGetHit() {
	s.mock.ExpectGet("k").SetVal(`{"name":"Aria"}`)

	entity, ok, err := s.cache.Get(context.Background(), "k")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(map[string]any{"name": "Aria"}, entity)
}

func (s *RedisCacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("k").RedisNil()

	entity, ok, err := s.cache.Get(context.Background(), "k")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(entity)
}

func (s *RedisCacheTestSuite) TestGetError() {
	s.mock.ExpectGet("k").SetErr(errors.New("conn reset"))

	_, _, err := s.cache.Get(context.Background(), "k")
	s.Require().Error(err)
	s.NotErrorIs(err, redis.Nil)
}

func (s *RedisCacheTestSuite) TestSetUsesTTL() {
	s.mock.ExpectSet("k", `{"level":3}`, time.Minute).SetVal("OK")

	s.Require().NoError(s.cache.Set(context.Background(), "k", map[string]any{"level": 3}))
}

func (s *RedisCacheTestSuite) TestInvalidate() {
	s.mock.ExpectDel("k").SetVal(1)

	s.Require().NoError(s.cache.Invalidate(context.Background(), "k"))
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) TestCacheKey() {
	s.Equal("sheetform:g1:p1:player/character:c42", CacheKey(testSession, "/player/character/", "c42"))
	s.Equal("sheetform:g1:p1:sheet", CacheKey(testSession, "sheet", ""))
}
