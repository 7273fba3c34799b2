package catalog

import (
	"context"
	"testing"

	"classroom-api/internal/audit"
	"classroom-api/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCoursesAndClasses(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemoryStore(), nil)

	_, err := svc.CreateCourse(ctx, docstore.Document{"title": "Go basics", "_id": "client-chosen"})
	require.NoError(t, err)
	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.IsType(t, primitive.ObjectID{}, courses[0]["_id"])

	_, err = svc.CreateClass(ctx, docstore.Document{"name": "Monday cohort"})
	require.NoError(t, err)
	classes, err := svc.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestDeleteClass(t *testing.T) {
	ctx := context.Background()
	repo := audit.NewMemoryRepo()
	svc := NewService(docstore.NewMemoryStore(), audit.NewService(repo))

	res, err := svc.CreateClass(ctx, docstore.Document{"name": "Monday cohort"})
	require.NoError(t, err)
	id := res.InsertedID.(primitive.ObjectID).Hex()

	del, err := svc.DeleteClass(ctx, id, Actor{Email: "anyone@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	del, err = svc.DeleteClass(ctx, id, Actor{Email: "anyone@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), del.DeletedCount)

	evs := repo.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, audit.EventTypeClassDeleted, evs[0].Type)

	_, err = svc.DeleteClass(ctx, "nope", Actor{})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestEnrollmentsFilteredByEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemoryStore(), nil)

	for _, email := range []string{"a@x.com", "a@x.com", "b@x.com"} {
		_, err := svc.Enroll(ctx, docstore.Document{"email": email, "courseId": "c1"})
		require.NoError(t, err)
	}
	mine, err := svc.Enrollments(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
