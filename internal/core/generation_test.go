package core

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HyunjoonKwak/page-maker/internal/store"
)

func completedSession(t *testing.T, db *store.SQLiteStore) *store.Session {
	t.Helper()
	session, err := db.CreateSession(store.Context{
		"product_name": store.StringValue("테스트상품"),
		"category":     store.StringValue("식품"),
		"price_info":   store.StringValue("19,900원"),
	})
	require.NoError(t, err)
	require.NoError(t, db.UpdateSessionStatus(session.ID, store.StatusCompleted))
	session.Status = store.StatusCompleted
	return session
}

func newGenerationService(t *testing.T, db *store.SQLiteStore, rasterizer PageCapturer) *GenerationService {
	t.Helper()
	dir := writeTemplates(t, map[string]string{"default.html": minimalTemplate})
	renderer := NewRenderer(dir, nil)
	return NewGenerationService(db, renderer, rasterizer, t.TempDir())
}

func TestGenerate_HTMLOnly(t *testing.T) {
	db := newTestStore(t)
	session := completedSession(t, db)
	svc := newGenerationService(t, db, &fakeBrowser{err: errors.New("must not be called")})

	history, err := svc.Generate(context.Background(), session.ID, store.OutputHTML, nil)
	require.NoError(t, err)

	require.NotNil(t, history.HTMLContent)
	assert.Contains(t, *history.HTMLContent, "테스트상품")
	assert.Contains(t, *history.HTMLContent, "19,900원")
	assert.Nil(t, history.ImagePath)
	assert.Equal(t, "테스트상품", history.ProductName)

	got, err := svc.GetHistory(history.ID)
	require.NoError(t, err)
	assert.Equal(t, history.ID, got.ID)
}

func TestGenerate_Both_WritesImage(t *testing.T) {
	db := newTestStore(t)
	session := completedSession(t, db)
	svc := newGenerationService(t, db, &fakeBrowser{rendered: []byte("png-bytes")})

	history, err := svc.Generate(context.Background(), session.ID, store.OutputBoth, nil)
	require.NoError(t, err)

	require.NotNil(t, history.ImagePath)
	data, err := os.ReadFile(*history.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	require.NotNil(t, history.HTMLContent)

	path, err := svc.GetImagePath(history.ID)
	require.NoError(t, err)
	assert.Equal(t, *history.ImagePath, path)
}

func TestGenerate_ImageOnly_OmitsHTML(t *testing.T) {
	db := newTestStore(t)
	session := completedSession(t, db)
	svc := newGenerationService(t, db, &fakeBrowser{rendered: []byte("png")})

	history, err := svc.Generate(context.Background(), session.ID, store.OutputImage, nil)
	require.NoError(t, err)
	assert.Nil(t, history.HTMLContent)
	assert.NotNil(t, history.ImagePath)
}

func TestGenerate_RasterizeFailureLeavesNoHistory(t *testing.T) {
	db := newTestStore(t)
	session := completedSession(t, db)
	svc := newGenerationService(t, db, &fakeBrowser{err: errors.New("browser crashed")})

	_, err := svc.Generate(context.Background(), session.ID, store.OutputBoth, nil)
	require.Error(t, err)

	// No orphaned partial record
	got, err := db.GetGenerationHistoryByID(1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGenerate_RequiresCompletedSession(t *testing.T) {
	db := newTestStore(t)
	session, err := db.CreateSession(nil)
	require.NoError(t, err)
	svc := newGenerationService(t, db, &fakeBrowser{})

	_, err = svc.Generate(context.Background(), session.ID, store.OutputHTML, nil)
	assert.ErrorIs(t, err, ErrInterviewIncomplete)

	_, err = svc.Generate(context.Background(), "no-such-session", store.OutputHTML, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetImagePath_NotFoundCases(t *testing.T) {
	db := newTestStore(t)
	svc := newGenerationService(t, db, &fakeBrowser{})

	_, err := svc.GetImagePath(42)
	assert.ErrorIs(t, err, ErrHistoryNotFound)

	session := completedSession(t, db)
	history, err := svc.Generate(context.Background(), session.ID, store.OutputHTML, nil)
	require.NoError(t, err)

	_, err = svc.GetImagePath(history.ID)
	assert.ErrorIs(t, err, ErrImageNotFound)
}
