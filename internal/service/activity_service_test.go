package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
)

func TestActivityServiceRecordAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.activity, testLogger())
	ctx := context.Background()

	for _, action := range []string{"grading.mode_changed", "grading.finalized", "Grading.Finalized"} {
		_, err := svc.Record(ctx, ActivityEntry{
			ActorID:    "teacher-1",
			Action:     action,
			EntityType: "Course",
			EntityID:   "c1",
			Metadata:   map[string]interface{}{"notify_email": "t@example.com", "mode": "category"},
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 2, EntityID: "c1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.EqualValues(t, 3, page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)
	require.Equal(t, "system", page.Items[0].ActorRole)
	require.Equal(t, "course", page.Items[0].EntityType)
	require.Equal(t, "***", page.Items[0].Metadata["notify_email"])
	require.Equal(t, "category", page.Items[0].Metadata["mode"])

	finalized, err := svc.List(ctx, dto.ActivityListRequest{Action: "grading.finalized"})
	require.NoError(t, err)
	require.Len(t, finalized.Items, 2)
}

func TestActivityServiceRequiresAction(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.activity, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "course"})
	require.Error(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{Action: "grading.finalized"})
	require.Error(t, err)
}
