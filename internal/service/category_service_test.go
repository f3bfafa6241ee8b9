package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

func TestCreateCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	service := NewCategoryService(repo)
	ctx := context.Background()

	category, err := service.CreateCategory(ctx, adminUser(), "  Network ", "connectivity issues")
	require.NoError(t, err)
	assert.Equal(t, "Network", category.Name)
	assert.True(t, category.IsActive)

	_, err = service.CreateCategory(ctx, regularUser("u1"), "Printers", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = service.CreateCategory(ctx, adminUser(), "   ", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	// Duplicate check ignores case.
	_, err = service.CreateCategory(ctx, adminUser(), "network", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestUpdateCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	service := NewCategoryService(repo)
	ctx := context.Background()
	admin := adminUser()

	network := repo.add("Network", true)
	repo.add("Hardware", true)

	updated, err := service.UpdateCategory(ctx, admin, network.ID, "Networking", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "Networking", updated.Name)

	_, err = service.UpdateCategory(ctx, admin, network.ID, "hardware", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = service.UpdateCategory(ctx, admin, "missing", "Anything", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestSetCategoryActive(t *testing.T) {
	repo := newFakeCategoryRepo()
	service := NewCategoryService(repo)
	ctx := context.Background()

	category := repo.add("Network", true)

	updated, err := service.SetActive(ctx, adminUser(), category.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = service.SetActive(ctx, regularUser("u1"), category.ID, true)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestDeleteCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	service := NewCategoryService(repo)
	ctx := context.Background()
	admin := adminUser()

	unused := repo.add("Unused", true)
	used := repo.add("Hardware", true)
	repo.usage["hardware"] = 3

	require.NoError(t, service.DeleteCategory(ctx, admin, unused.ID))

	err := service.DeleteCategory(ctx, admin, used.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	err = service.DeleteCategory(ctx, regularUser("u1"), used.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestListCategoriesByRole(t *testing.T) {
	repo := newFakeCategoryRepo()
	service := NewCategoryService(repo)
	ctx := context.Background()

	repo.add("Active", true)
	repo.add("Retired", false)

	all, err := service.ListCategories(ctx, adminUser())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := service.ListCategories(ctx, regularUser("u1"))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Active", active[0].Name)
}
