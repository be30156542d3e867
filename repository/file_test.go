package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
)

func testEnvConfig() *config.EnvConfig {
	cfg := &config.EnvConfig{}
	cfg.Storage.Bucket = "attachments"
	cfg.Storage.StagingBucket = "attachment-staging"
	cfg.Storage.SignedURLExpireMinutes = 60
	cfg.Storage.CacheMaxAgeMinutes = 1440
	cfg.Storage.MaxUploadBytes = 1 << 20
	return cfg
}

func newTestFileRepo() (*FileRepository, *fakeBlobStore, *fakeSessionRegistry) {
	store := newFakeBlobStore()
	sessions := newFakeSessionRegistry()
	return NewFileRepository(store, sessions, testEnvConfig()), store, sessions
}

func fileNames(files []entity.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func TestListFiles_SortsByLastModifiedThenName(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	store.seed("attachments", "ticket/42/b.png", []byte("b"), "image/png", t2, nil)
	store.seed("attachments", "ticket/42/c.txt", []byte("c"), "text/plain", t1, nil)
	store.seed("attachments", "ticket/42/a.png", []byte("a"), "image/png", t1, nil)

	// Timestamp first, then name breaks the tie between a.png and c.txt.
	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "c.txt", "b.png"}, fileNames(files))
}

func TestListFiles_NameTieBreakIsCaseInsensitive(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.seed("attachments", "ticket/42/Beta.txt", []byte("x"), "text/plain", ts, nil)
	store.seed("attachments", "ticket/42/alpha.txt", []byte("x"), "text/plain", ts, nil)
	store.seed("attachments", "ticket/42/CHARLIE.txt", []byte("x"), "text/plain", ts, nil)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Equal(t, []string{"alpha.txt", "Beta.txt", "CHARLIE.txt"}, fileNames(files))
}

func TestListFiles_ExcludesDerivedThumbnails(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/photo.png", []byte("src"), "image/png", ts, nil)
	store.seed("attachments", "ticket/42/64x64x1/photo.png", []byte("thumb"), "image/jpeg", ts, nil)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Equal(t, []string{"photo.png"}, fileNames(files))
}

func TestListFiles_ScopedToObjectPrefix(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/mine.txt", []byte("x"), "text/plain", ts, nil)
	store.seed("attachments", "ticket/420/other.txt", []byte("x"), "text/plain", ts, nil)
	store.seed("attachments", "invoice/42/other.txt", []byte("x"), "text/plain", ts, nil)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Equal(t, []string{"mine.txt"}, fileNames(files))
}

func TestListFiles_ExtensionFilter(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/photo.PNG", []byte("x"), "image/png", ts, nil)
	store.seed("attachments", "ticket/42/notes.txt", []byte("x"), "text/plain", ts, nil)
	store.seed("attachments", "ticket/42/clip.mp4", []byte("x"), "video/mp4", ts, nil)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{
		ExtensionsFilter: []string{entity.ExtensionGroupImage},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"photo.PNG"}, fileNames(files))

	files, err = repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{
		ExtensionsFilter:       []string{entity.ExtensionGroupImage},
		NegateExtensionsFilter: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"clip.mp4", "notes.txt"}, fileNames(files))
}

func TestListFiles_MetadataFilter(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/a.txt", []byte("x"), "text/plain", ts, map[string]string{"Category": "invoice"})
	store.seed("attachments", "ticket/42/b.txt", []byte("x"), "text/plain", ts, map[string]string{"category": "receipt"})
	store.seed("attachments", "ticket/42/c.txt", []byte("x"), "text/plain", ts, nil)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{
		AllFiles:       true,
		MetadataFilter: map[string]string{"category": "invoice"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, fileNames(files))
}

func TestListFiles_NoMatchReturnsEmptySlice(t *testing.T) {
	repo, _, _ := newTestFileRepo()

	files, err := repo.ListFiles(context.Background(), "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.NotNil(t, files)
	require.Empty(t, files)
}

func TestListFiles_PopulatesPresignedURL(t *testing.T) {
	repo, store, _ := newTestFileRepo()

	store.seed("attachments", "ticket/42/a.txt", []byte("x"), "text/plain", time.Now().UTC(), nil)

	files, err := repo.ListFiles(context.Background(), "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "https://signed.test/attachments/ticket/42/a.txt", files[0].URL)
}

func TestUploadFile_WritesUnderObjectKeyAndOverwrites(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	fileID, err := repo.UploadFile(ctx, "ticket", "42", "report.pdf", "application/pdf", strings.NewReader("v1"), 2, nil)
	require.NoError(t, err)
	require.Equal(t, "ticket/42/report.pdf", fileID)

	// Same name overwrites silently; last writer wins.
	_, err = repo.UploadFile(ctx, "ticket", "42", "report.pdf", "application/pdf", strings.NewReader("v2"), 2, nil)
	require.NoError(t, err)

	data, err := store.GetObject(ctx, "attachments", fileID)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestGetFileInfo_NotFound(t *testing.T) {
	repo, _, _ := newTestFileRepo()

	_, err := repo.GetFileInfo(context.Background(), "ticket/42/missing.txt")
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDeleteFile_NonexistentIsNoop(t *testing.T) {
	repo, _, _ := newTestFileRepo()

	err := repo.DeleteFile(context.Background(), "ticket/42/missing.txt")
	require.NoError(t, err)
}

func TestDeleteFile_CascadesImageThumbnails(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/Photo.png", []byte("src"), "image/png", ts, nil)
	store.seed("attachments", "ticket/42/64x64x1/photo.PNG", []byte("t1"), "image/jpeg", ts, nil)
	store.seed("attachments", "ticket/42/256x256x0/Photo.png", []byte("t2"), "image/jpeg", ts, nil)
	store.seed("attachments", "ticket/42/64x64x1/other.png", []byte("t3"), "image/jpeg", ts, nil)
	store.seed("attachments", "ticket/42/other.png", []byte("src2"), "image/png", ts, nil)

	err := repo.DeleteFile(ctx, "ticket/42/Photo.png")
	require.NoError(t, err)

	exists := func(key string) bool {
		ok, err := store.ObjectExists(ctx, "attachments", key)
		require.NoError(t, err)
		return ok
	}
	require.False(t, exists("ticket/42/Photo.png"))
	require.False(t, exists("ticket/42/64x64x1/photo.PNG"), "thumbnail name match is case-insensitive")
	require.False(t, exists("ticket/42/256x256x0/Photo.png"))
	require.True(t, exists("ticket/42/64x64x1/other.png"), "another file's thumbnails survive")
	require.True(t, exists("ticket/42/other.png"))
}

func TestDeleteFile_NonImageSkipsCascade(t *testing.T) {
	repo, store, _ := newTestFileRepo()
	ctx := context.Background()

	ts := time.Now().UTC()
	store.seed("attachments", "ticket/42/notes.txt", []byte("src"), "text/plain", ts, nil)
	// An unrelated blob that happens to share the trailing name.
	store.seed("attachments", "ticket/42/64x64x1/notes.txt", []byte("x"), "image/jpeg", ts, nil)

	err := repo.DeleteFile(ctx, "ticket/42/notes.txt")
	require.NoError(t, err)

	ok, err := store.ObjectExists(ctx, "attachments", "ticket/42/64x64x1/notes.txt")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUploadTemporaryFile_IsolatedFromListings(t *testing.T) {
	repo, store, sessions := newTestFileRepo()
	ctx := context.Background()

	stagedID, err := repo.UploadTemporaryFile(ctx, "sess-1", "draft.png", "image/png", strings.NewReader("data"), 4)
	require.NoError(t, err)
	require.Equal(t, "sess-1/draft.png", stagedID)

	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionStaging, state)

	// Staged file lives in the staging bucket only.
	ok, err := store.ObjectExists(ctx, "attachment-staging", stagedID)
	require.NoError(t, err)
	require.True(t, ok)

	files, err := repo.ListFiles(ctx, "ticket", "42", entity.FileSearchOptions{AllFiles: true})
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestUploadTemporaryFile_TerminatedSessionRefused(t *testing.T) {
	repo, _, sessions := newTestFileRepo()
	ctx := context.Background()

	require.NoError(t, sessions.Terminate(ctx, "sess-1", entity.SessionAccepted))

	_, err := repo.UploadTemporaryFile(ctx, "sess-1", "late.png", "image/png", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, entity.ErrSessionTerminated)
}

func TestMoveTemporaryFiles_CommitsAndTerminates(t *testing.T) {
	repo, store, sessions := newTestFileRepo()
	ctx := context.Background()

	_, err := repo.UploadTemporaryFile(ctx, "sess-1", "a.png", "image/png", strings.NewReader("aa"), 2)
	require.NoError(t, err)
	_, err = repo.UploadTemporaryFile(ctx, "sess-1", "b.txt", "text/plain", strings.NewReader("bb"), 2)
	require.NoError(t, err)

	moved, err := repo.MoveTemporaryFiles(ctx, "sess-1", "ticket", "42")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.png", "b.txt"}, moved)

	data, err := store.GetObject(ctx, "attachments", "ticket/42/a.png")
	require.NoError(t, err)
	require.Equal(t, "aa", string(data))

	// Staging copies are gone.
	blobs, err := store.ListObjects(ctx, "attachment-staging", "sess-1/")
	require.NoError(t, err)
	require.Empty(t, blobs)

	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionAccepted, state)
}

func TestMoveTemporaryFiles_EmptySessionIsNoop(t *testing.T) {
	repo, _, sessions := newTestFileRepo()
	ctx := context.Background()

	moved, err := repo.MoveTemporaryFiles(ctx, "sess-1", "ticket", "42")
	require.NoError(t, err)
	require.Empty(t, moved)

	// No staged files means no commit: the session stays usable.
	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionEmpty, state)
}

func TestMoveTemporaryFiles_FailureLeavesRemainderStaged(t *testing.T) {
	repo, store, sessions := newTestFileRepo()
	ctx := context.Background()

	_, err := repo.UploadTemporaryFile(ctx, "sess-1", "a.png", "image/png", strings.NewReader("aa"), 2)
	require.NoError(t, err)
	_, err = repo.UploadTemporaryFile(ctx, "sess-1", "b.png", "image/png", strings.NewReader("bb"), 2)
	require.NoError(t, err)

	store.failCopy["sess-1/b.png"] = context.DeadlineExceeded

	moved, err := repo.MoveTemporaryFiles(ctx, "sess-1", "ticket", "42")
	require.Error(t, err)
	require.Equal(t, []string{"a.png"}, moved)

	// The failed file is still staged and the session is not terminated, so a
	// retry can finish the commit.
	ok, err := store.ObjectExists(ctx, "attachment-staging", "sess-1/b.png")
	require.NoError(t, err)
	require.True(t, ok)

	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionStaging, state)

	// Retry completes.
	delete(store.failCopy, "sess-1/b.png")
	moved, err = repo.MoveTemporaryFiles(ctx, "sess-1", "ticket", "42")
	require.NoError(t, err)
	require.Equal(t, []string{"b.png"}, moved)

	state, err = sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionAccepted, state)
}

func TestDeleteTemporaryFiles_RejectsSession(t *testing.T) {
	repo, store, sessions := newTestFileRepo()
	ctx := context.Background()

	_, err := repo.UploadTemporaryFile(ctx, "sess-1", "a.png", "image/png", strings.NewReader("aa"), 2)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTemporaryFiles(ctx, "sess-1"))

	blobs, err := store.ListObjects(ctx, "attachment-staging", "sess-1/")
	require.NoError(t, err)
	require.Empty(t, blobs)

	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRejected, state)
}

func TestDeleteTemporaryFiles_EmptySessionIsNoop(t *testing.T) {
	repo, _, sessions := newTestFileRepo()
	ctx := context.Background()

	require.NoError(t, repo.DeleteTemporaryFiles(ctx, "sess-1"))

	state, err := sessions.State(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionEmpty, state)
}
