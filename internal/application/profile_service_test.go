package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	repo "github.com/oksasatya/vidstream-accounts/internal/domain/repository"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
)

func newProfileFixture(t *testing.T) (*ProfileService, *accountFixture, string) {
	t.Helper()
	f := newAccountFixture(t)
	id := f.register(t, validRegister())
	svc := NewProfileService(f.repo, Deps{
		Uploader: f.uploader,
		Cache:    f.cache,
		Index:    f.index,
	})
	return svc, f, id
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newProfileFixture(t)

	_, err := svc.CurrentUser(nil)
	requireKind(t, err, apperror.KindAuth)

	pub, err := svc.CurrentUser(&entity.PublicAccount{ID: "1", Username: "ab"})
	require.NoError(t, err)
	assert.Equal(t, "ab", pub.Username)
}

func TestUpdateAccountDetails(t *testing.T) {
	svc, f, id := newProfileFixture(t)

	_, err := svc.UpdateAccountDetails(context.Background(), id, AccountDetailsInput{Fullname: "New", Email: " "})
	requireKind(t, err, apperror.KindValidation)

	pub, err := svc.UpdateAccountDetails(context.Background(), id, AccountDetailsInput{Fullname: " New Name ", Email: "new@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", pub.Fullname)
	assert.Equal(t, "new@b.com", pub.Email)
	assert.Equal(t, "ab", pub.Username)
	assert.Equal(t, "new@b.com", f.repo.stored(id).Email)
	assert.True(t, f.cache.has(id))
	assert.Equal(t, "New Name", f.index.docs[id].Fullname)

	_, err = svc.UpdateAccountDetails(context.Background(), "missing", AccountDetailsInput{Fullname: "N", Email: "n@b.com"})
	requireKind(t, err, apperror.KindNotFound)
}

type dupRepo struct{ *fakeRepo }

func (dupRepo) UpdateDetails(context.Context, string, repo.AccountDetails) (*entity.Account, error) {
	return nil, repo.ErrDuplicateAccount
}

func TestUpdateAccountDetails_EmailTaken(t *testing.T) {
	_, f, id := newProfileFixture(t)
	svc := NewProfileService(dupRepo{f.repo}, Deps{})

	_, err := svc.UpdateAccountDetails(context.Background(), id, AccountDetailsInput{Fullname: "N", Email: "taken@b.com"})
	requireKind(t, err, apperror.KindConflict)
}

func TestUpdateAvatar(t *testing.T) {
	svc, f, id := newProfileFixture(t)

	_, err := svc.UpdateAvatar(context.Background(), id, nil)
	requireKind(t, err, apperror.KindValidation)

	pub, err := svc.UpdateAvatar(context.Background(), id, file("next.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatars/next.png", pub.AvatarURL)
	assert.Equal(t, pub.AvatarURL, f.repo.stored(id).AvatarURL)

	f.uploader.failFor = map[string]error{FolderAvatars: errUpstream}
	_, err = svc.UpdateAvatar(context.Background(), id, file("broken.png"))
	requireKind(t, err, apperror.KindUpload)
	assert.Equal(t, "https://cdn.test/avatars/next.png", f.repo.stored(id).AvatarURL)
}

func TestUpdateCoverImage(t *testing.T) {
	svc, f, id := newProfileFixture(t)

	_, err := svc.UpdateCoverImage(context.Background(), id, nil)
	requireKind(t, err, apperror.KindValidation)

	pub, err := svc.UpdateCoverImage(context.Background(), id, file("cover.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/covers/cover.jpg", pub.CoverImageURL)

	f.uploader.emptyURL = true
	_, err = svc.UpdateCoverImage(context.Background(), id, file("cover2.jpg"))
	requireKind(t, err, apperror.KindUpload)
	assert.Equal(t, "https://cdn.test/covers/cover.jpg", f.repo.stored(id).CoverImageURL)
}

func TestUpdateAvatar_WithoutUploader(t *testing.T) {
	_, f, id := newProfileFixture(t)
	svc := NewProfileService(f.repo, Deps{})

	_, err := svc.UpdateAvatar(context.Background(), id, file("a.png"))
	requireKind(t, err, apperror.KindUpload)
}

func TestSearchAccounts(t *testing.T) {
	svc, f, _ := newProfileFixture(t)

	_, err := svc.SearchAccounts(context.Background(), "  ", 5)
	requireKind(t, err, apperror.KindValidation)

	res, err := svc.SearchAccounts(context.Background(), " ab ", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "ab", f.index.lastQry)

	f.index.err = errUpstream
	_, err = svc.SearchAccounts(context.Background(), "ab", 5)
	requireKind(t, err, apperror.KindInternal)

	noIndex := NewProfileService(f.repo, Deps{})
	res, err = noIndex.SearchAccounts(context.Background(), "ab", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
