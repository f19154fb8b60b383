package domain_test

import (
	"context"
	"net/http"
	"testing"

	"go-hiring-pipeline/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role     domain.Role
		resource domain.Resource
		action   domain.Action
		want     bool
	}{
		{domain.RoleRecruiter, domain.ResourceCandidates, domain.ActionDelete, true},
		{domain.RoleRecruiter, domain.ResourceUsers, domain.ActionUpdate, true},
		{domain.RoleHiringManager, domain.ResourceCandidates, domain.ActionImport, true},
		{domain.RoleHiringManager, domain.ResourceCandidates, domain.ActionDelete, false},
		{domain.RoleHiringManager, domain.ResourceUsers, domain.ActionRead, false},
		{domain.RoleInterviewer, domain.ResourceCandidates, domain.ActionUpdate, true},
		{domain.RoleInterviewer, domain.ResourceCandidates, domain.ActionImport, false},
		{domain.RoleViewer, domain.ResourceCandidates, domain.ActionRead, true},
		{domain.RoleViewer, domain.ResourceNotes, domain.ActionCreate, false},
		{"GUEST", domain.ResourceCandidates, domain.ActionRead, false},
	}
	for _, tt := range tests {
		name := string(tt.role) + " " + string(tt.action) + " " + string(tt.resource)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.HasPermission(tt.role, tt.resource, tt.action))
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := domain.ActorFromContext(context.Background())
	assert.False(t, ok)

	ctx := domain.WithActor(context.Background(), domain.Actor{ID: "u-1", Role: domain.RoleViewer})
	actor, ok := domain.ActorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", actor.ID)
	assert.False(t, actor.Can(domain.ActionExport, domain.ResourceCandidates))
}

func TestImportOutcomeStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, domain.ImportAllSucceeded.HTTPStatus())
	assert.Equal(t, http.StatusMultiStatus, domain.ImportPartial.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, domain.ImportFailed.HTTPStatus())
}

func TestEnums(t *testing.T) {
	assert.True(t, domain.StatusOffer.Valid())
	assert.False(t, domain.CandidateStatus("offer").Valid())
	assert.True(t, domain.LevelMid.Valid())
	assert.False(t, domain.CandidateLevel("Principal").Valid())
	assert.True(t, domain.RoleViewer.Valid())
}

func TestPagination(t *testing.T) {
	page, size := domain.NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, domain.MaxPageSize, size)

	result := domain.NewPaginatedResult[string](nil, 41, 1, 20)
	assert.NotNil(t, result.Data)
	assert.Equal(t, 3, result.TotalPages)
}
