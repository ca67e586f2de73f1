// Package voicestore_test tests the durable voice profile store.
package voicestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/voicestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStage is a ReferenceStage backed by a fixed file path.
type mockStage struct {
	path   string
	staged bool
}

func (m *mockStage) Stage(_ []byte) error { return nil }

func (m *mockStage) HasStaged() bool { return m.staged }

func (m *mockStage) StagedPath() (string, bool) {
	if !m.staged {
		return "", false
	}

	return m.path, true
}

func (m *mockStage) Clear() error {
	m.staged = false

	return nil
}

// mockExtractor is an EmbeddingExtractor with scripted outcomes.
type mockExtractor struct {
	shouldFail  bool
	failMessage string
	calls       int
	lastAudio   string
	lastOutput  string
}

func (m *mockExtractor) Extract(_ context.Context, audioPath, outputPath string) core.EmbeddingOutcome {
	m.calls++
	m.lastAudio = audioPath
	m.lastOutput = outputPath

	if m.shouldFail {
		return core.EmbeddingOutcome{Status: core.EmbeddingUnavailable, Err: m.failMessage}
	}

	writeErr := os.WriteFile(outputPath, []byte("embedding"), 0o600)
	if writeErr != nil {
		return core.EmbeddingOutcome{Status: core.EmbeddingUnavailable, Err: writeErr.Error()}
	}

	return core.EmbeddingOutcome{Status: core.EmbeddingCached, Err: ""}
}

func setupStore(t *testing.T, staged bool, extractor *mockExtractor) (*voicestore.Store, string) {
	t.Helper()

	root := t.TempDir()

	stagedPath := filepath.Join(t.TempDir(), "reference.wav")
	if staged {
		require.NoError(t, os.WriteFile(stagedPath, []byte("staged audio"), 0o600))
	}

	log, err := logger.New(t.TempDir(), "voicestore-test.log")
	require.NoError(t, err)

	stage := &mockStage{path: stagedPath, staged: staged}

	return voicestore.New(root, stage, extractor, log), root
}

func TestDeriveID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane_doe", voicestore.DeriveID("Jane Doe"))
	assert.Equal(t, "jane_doe", voicestore.DeriveID("  Jane   Doe!!!"))
	assert.Equal(t, "uncle_fu", voicestore.DeriveID("Uncle_Fu"))
	assert.Equal(t, "voice2", voicestore.DeriveID("Voice2"))
	assert.Empty(t, voicestore.DeriveID("!!!"))
}

func TestCreate_ThenGet(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	created, err := store.Create(context.Background(), "Jane Doe", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", created.ID)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Equal(t, "hello world", created.ReferenceText)
	assert.True(t, created.HasEmbedding)
	assert.Equal(t, core.EmbeddingCached, created.EmbeddingStatus)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get("jane_doe")
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.ReferenceText, got.ReferenceText)

	// The profile owns a copy of the staged audio.
	data, err := os.ReadFile(store.AudioPath("jane_doe"))
	require.NoError(t, err)
	assert.Equal(t, []byte("staged audio"), data)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, store.AudioPath("jane_doe"), extractor.lastAudio)
	assert.Equal(t, store.EmbeddingPath("jane_doe"), extractor.lastOutput)
}

func TestCreate_NoReferenceStaged(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, root := setupStore(t, false, extractor)

	_, err := store.Create(context.Background(), "Jane Doe", "")
	require.ErrorIs(t, err, core.ErrNoReferenceStaged)

	// No artifacts may be left behind.
	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.Zero(t, extractor.calls)
}

func TestCreate_NameRequired(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "", "text")
	require.ErrorIs(t, err, core.ErrNameRequired)

	_, err = store.Create(context.Background(), "!!!", "text")
	require.ErrorIs(t, err, core.ErrNameRequired)
}

func TestCreate_ExtractionFailureIsRecordedNotRaised(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{
		shouldFail:  true,
		failMessage: "extractor exited with status 1",
		calls:       0,
		lastAudio:   "",
		lastOutput:  "",
	}
	store, _ := setupStore(t, true, extractor)

	created, err := store.Create(context.Background(), "Jane Doe", "hi")
	require.NoError(t, err)
	assert.False(t, created.HasEmbedding)
	assert.Equal(t, core.EmbeddingUnavailable, created.EmbeddingStatus)
	assert.Equal(t, "extractor exited with status 1", created.EmbeddingError)
}

func TestCreate_OverwriteRemovesStaleEmbedding(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "Jane Doe", "first")
	require.NoError(t, err)
	assert.FileExists(t, store.EmbeddingPath("jane_doe"))

	// Same derived id, failing extraction: last write wins and the stale
	// embedding from the first profile must not survive as "valid".
	extractor.shouldFail = true
	extractor.failMessage = "gpu unavailable"

	overwritten, err := store.Create(context.Background(), "Jane  Doe", "second")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", overwritten.ID)
	assert.Equal(t, "second", overwritten.ReferenceText)
	assert.False(t, overwritten.HasEmbedding)
	assert.NoFileExists(t, store.EmbeddingPath("jane_doe"))
}

func TestList_SkipsOrphans(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, root := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "Visible Voice", "")
	require.NoError(t, err)

	// Metadata without audio: never listed.
	noAudioDir := filepath.Join(root, "no_audio")
	require.NoError(t, os.MkdirAll(noAudioDir, 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(noAudioDir, "metadata.json"),
		[]byte(`{"id":"no_audio","name":"No Audio"}`),
		0o600,
	))

	// Audio without metadata: never listed.
	noMetaDir := filepath.Join(root, "no_meta")
	require.NoError(t, os.MkdirAll(noMetaDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(noMetaDir, "audio.wav"), []byte("x"), 0o600))

	profiles, err := store.List()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "visible_voice", profiles[0].ID)
}

func TestList_EmptyRoot(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, false, extractor)

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestRename(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "Jane Doe", "hi")
	require.NoError(t, err)

	renamed, err := store.Rename(context.Background(), "jane_doe", "Janet")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", renamed.ID, "rename must never change the id")
	assert.Equal(t, "Janet", renamed.Name)

	got, err := store.Get("jane_doe")
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.Name)
}

func TestRename_Errors(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Rename(context.Background(), "ghost", "New Name")
	require.ErrorIs(t, err, core.ErrProfileNotFound)

	_, createErr := store.Create(context.Background(), "Jane Doe", "")
	require.NoError(t, createErr)

	_, err = store.Rename(context.Background(), "jane_doe", "")
	require.ErrorIs(t, err, core.ErrNameRequired)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "Jane Doe", "hi")
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "jane_doe"))

	_, err = store.Get("jane_doe")
	require.ErrorIs(t, err, core.ErrProfileNotFound)

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestDelete_AfterFailedExtraction(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{
		shouldFail:  true,
		failMessage: "boom",
		calls:       0,
		lastAudio:   "",
		lastOutput:  "",
	}
	store, _ := setupStore(t, true, extractor)

	_, err := store.Create(context.Background(), "Jane Doe", "hi")
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "jane_doe"))

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{shouldFail: false, failMessage: "", calls: 0, lastAudio: "", lastOutput: ""}
	store, _ := setupStore(t, false, extractor)

	err := store.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, core.ErrProfileNotFound)
}
