package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/credential"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	storagememory "github.com/tunepulse/tunepulse-api/internal/storage/memory"
)

func newProfileFixture(t *testing.T) (*ProfileService, *mockUserRepository, *storagememory.Store, *eventRecorder) {
	t.Helper()
	repo := &mockUserRepository{}
	store := storagememory.New("https://img.test")
	dispatcher, recorder := recordingDispatcher()
	svc := NewProfileService(
		repo,
		store,
		credential.NewIssuer("test-secret"),
		dispatcher,
		testAuthConfig(),
		"http://localhost:3000",
		zap.NewNop(),
	)
	return svc, repo, store, recorder
}

func TestUpdateProfileName(t *testing.T) {
	svc, repo, _, recorder := newProfileFixture(t)

	current := verifiedUser()
	updated := *current
	updated.UserName = "Alicia"
	repo.On("UpdateProfile", mock.Anything, "u-1", mock.MatchedBy(func(patch repository.ProfilePatch) bool {
		return patch.UserName != nil && *patch.UserName == "Alicia" && patch.PendingEmail == nil
	})).Return(&updated, nil)

	name := "Alicia"
	got, err := svc.UpdateProfile(context.Background(), current, ProfileUpdateInput{UserName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.UserName)
	assert.Empty(t, recorder.byType(events.EventEmailChangeRequested))
}

func TestUpdateProfileStagesEmailChange(t *testing.T) {
	svc, repo, _, recorder := newProfileFixture(t)

	current := verifiedUser()
	pending := "new@example.com"
	updated := *current
	updated.IsVerified = false
	updated.PendingEmail = &pending

	repo.On("UpdateProfile", mock.Anything, "u-1", mock.MatchedBy(func(patch repository.ProfilePatch) bool {
		return patch.PendingEmail != nil && *patch.PendingEmail == "new@example.com" &&
			patch.IsVerified != nil && !*patch.IsVerified &&
			patch.EmailChangeToken != nil && patch.EmailChangeTokenExpires != nil
	})).Return(&updated, nil)

	email := "New@Example.com"
	got, err := svc.UpdateProfile(context.Background(), current, ProfileUpdateInput{Email: &email})
	require.NoError(t, err)
	assert.False(t, got.IsVerified)
	assert.True(t, got.AwaitingEmailConfirmation())
	assert.Equal(t, "new@example.com", got.DisplayEmail())

	// The confirmation mail goes to the NEW address, not the stored one.
	sent := recorder.byType(events.EventEmailChangeRequested)
	require.Len(t, sent, 1)
	payload := sent[0].Payload.(events.CredentialRequestedPayload)
	assert.Equal(t, "new@example.com", payload.Email)
	assert.True(t, strings.HasPrefix(payload.Link, "http://localhost:3000/confirm-email/"))
}

func TestUpdateProfileSameEmailIsNoChange(t *testing.T) {
	svc, repo, _, recorder := newProfileFixture(t)

	current := verifiedUser()
	repo.On("UpdateProfile", mock.Anything, "u-1", mock.MatchedBy(func(patch repository.ProfilePatch) bool {
		return patch.PendingEmail == nil && patch.EmailChangeToken == nil
	})).Return(current, nil)

	email := "alice@example.com"
	got, err := svc.UpdateProfile(context.Background(), current, ProfileUpdateInput{Email: &email})
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Empty(t, recorder.byType(events.EventEmailChangeRequested))
}

func TestUpdateProfileRejectsInvalidEmail(t *testing.T) {
	svc, repo, _, _ := newProfileFixture(t)

	email := "not-an-email"
	_, err := svc.UpdateProfile(context.Background(), verifiedUser(), ProfileUpdateInput{Email: &email})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	repo.AssertNotCalled(t, "UpdateProfile")
}

func TestUploadAvatar(t *testing.T) {
	svc, repo, store, _ := newProfileFixture(t)

	repo.On("SetImageURL", mock.Anything, "u-1", "https://img.test/profile_pics/profile_u-1").Return(nil)

	data := strings.NewReader("fake-png-bytes")
	url, err := svc.UploadAvatar(context.Background(), "u-1", "image/png", int64(data.Len()), data)
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/profile_pics/profile_u-1", url)
	assert.Equal(t, 1, store.Len())

	// A second upload reuses the key and overwrites the blob.
	data = strings.NewReader("other-bytes")
	_, err = svc.UploadAvatar(context.Background(), "u-1", "image/png", int64(data.Len()), data)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	svc, repo, _, _ := newProfileFixture(t)

	_, err := svc.UploadAvatar(context.Background(), "u-1", "application/pdf", 10, strings.NewReader("0123456789"))
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	repo.AssertNotCalled(t, "SetImageURL")
}

func TestUploadAvatarRejectsOversize(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)

	_, err := svc.UploadAvatar(context.Background(), "u-1", "image/png", maxAvatarSize+1, strings.NewReader(""))
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}
