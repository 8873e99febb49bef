package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-eval/internal/app"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestBuildReadinessChecks_NilDependencies(t *testing.T) {
	dbCheck, redisCheck, kafkaCheck := app.BuildReadinessChecks(nil, nil, nil)
	assert.Error(t, dbCheck(context.Background()))
	assert.Error(t, redisCheck(context.Background()))
	assert.Error(t, kafkaCheck(context.Background()))
}

func TestBuildReadinessChecks_DBAndKafka(t *testing.T) {
	dbCheck, _, kafkaCheck := app.BuildReadinessChecks(fakePinger{}, nil, fakePinger{err: errors.New("broker down")})
	assert.NoError(t, dbCheck(context.Background()))
	assert.Error(t, kafkaCheck(context.Background()))
}

func TestBuildReadinessChecks_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, redisCheck, _ := app.BuildReadinessChecks(nil, rdb, nil)
	assert.NoError(t, redisCheck(context.Background()))

	mr.Close()
	assert.Error(t, redisCheck(context.Background()))
}
