package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository/repotest"
)

func TestUpsertProfileCreatesThenMerges(t *testing.T) {
	svc := NewService(repotest.NewUserRepo(), repotest.NewPatientProfileRepo())
	patientID := uuid.New()

	profile, err := svc.UpsertProfile(context.Background(), patientID, &model.UpsertPatientProfileRequest{
		FullName: "Jordan Smith",
		Age:      34,
		Contact:  "555-0101",
		Address:  "12 Elm St",
	})
	require.NoError(t, err)
	assert.Equal(t, patientID, profile.UserID)

	// Zero-valued fields keep the stored values.
	profile, err = svc.UpsertProfile(context.Background(), patientID, &model.UpsertPatientProfileRequest{
		Contact: "555-0202",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan Smith", profile.FullName)
	assert.Equal(t, 34, profile.Age)
	assert.Equal(t, "555-0202", profile.Contact)
	assert.Equal(t, "12 Elm St", profile.Address)
}

func TestGetProfileMissing(t *testing.T) {
	svc := NewService(repotest.NewUserRepo(), repotest.NewPatientProfileRepo())

	_, err := svc.GetProfile(context.Background(), uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestListReturnsOnlyPatients(t *testing.T) {
	userRepo := repotest.NewUserRepo()
	svc := NewService(userRepo, repotest.NewPatientProfileRepo())

	require.NoError(t, userRepo.Create(context.Background(), &model.User{
		Username: "pat@example.com", Role: model.RolePatient,
	}))
	require.NoError(t, userRepo.Create(context.Background(), &model.User{
		Username: "doc@example.com", Role: model.RoleDoctor,
	}))

	patients, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "pat@example.com", patients[0].Username)
}
