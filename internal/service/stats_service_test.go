package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

func TestAdminOverview(t *testing.T) {
	lifecycle := newLifecycleFixture(t)
	feedbackRepo := newFakeFeedbackRepo()
	service := NewStatsService(lifecycle.store, feedbackRepo, nil, 0, zap.NewNop())
	ctx := context.Background()
	admin := adminUser()

	first := lifecycle.mustCreate(t, regularUser("alice"))
	lifecycle.mustCreate(t, regularUser("bob"))
	_, err := lifecycle.service.AdvanceStatus(ctx, admin, first.ID, domain.StatusInProgress, "")
	require.NoError(t, err)

	overview, err := service.AdminOverview(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.Total)
	assert.Equal(t, int64(1), overview.ByStatus[domain.StatusSubmitted])
	assert.Equal(t, int64(1), overview.ByStatus[domain.StatusInProgress])
	assert.Equal(t, int64(2), overview.ByCategory["Hardware"])

	_, err = service.AdminOverview(ctx, regularUser("alice"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestUserOverviewScopedToActor(t *testing.T) {
	lifecycle := newLifecycleFixture(t)
	service := NewStatsService(lifecycle.store, newFakeFeedbackRepo(), nil, 0, zap.NewNop())
	ctx := context.Background()
	alice := regularUser("alice")

	lifecycle.mustCreate(t, alice)
	lifecycle.mustCreate(t, alice)
	lifecycle.mustCreate(t, regularUser("bob"))

	overview, err := service.UserOverview(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.Total)
	assert.Equal(t, int64(2), overview.ByStatus[domain.StatusSubmitted])
}
