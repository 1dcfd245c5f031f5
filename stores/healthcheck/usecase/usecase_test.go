package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/treemarket/base/ctx"
	hcdomain "github.com/x-xyz/treemarket/domain/healthcheck"
	"github.com/x-xyz/treemarket/domain/healthcheck/mocks"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		desc     string
		storeErr error
		redisErr error
		expected hcdomain.Report
		healthy  bool
	}{
		{
			desc:     "all up",
			expected: hcdomain.Report{Store: hcdomain.StatusUp, Redis: hcdomain.StatusUp},
			healthy:  true,
		},
		{
			desc:     "memory store without redis",
			storeErr: hcdomain.ErrNotConfigured,
			redisErr: hcdomain.ErrNotConfigured,
			expected: hcdomain.Report{Store: hcdomain.StatusSkipped, Redis: hcdomain.StatusSkipped},
			healthy:  true,
		},
		{
			desc:     "mongo down still probes redis",
			storeErr: errors.New("no primary"),
			expected: hcdomain.Report{Store: hcdomain.StatusDown, Redis: hcdomain.StatusUp},
		},
		{
			desc:     "redis down",
			redisErr: errors.New("i/o timeout"),
			expected: hcdomain.Report{Store: hcdomain.StatusUp, Redis: hcdomain.StatusDown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			req := require.New(t)
			repo := new(mocks.HealthCheckRepo)
			repo.On("PingStore", mock.Anything).Return(tt.storeErr).Once()
			repo.On("PingRedis", mock.Anything).Return(tt.redisErr).Once()

			report := New(repo).Check(ctx.Background())
			req.Equal(tt.expected, report)
			req.Equal(tt.healthy, report.Healthy())
			repo.AssertExpectations(t)
		})
	}
}
