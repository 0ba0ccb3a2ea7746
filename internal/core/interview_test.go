package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HyunjoonKwak/page-maker/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNextQuestion_FixedOrder(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	ctx := context.Background()
	for _, expected := range InterviewFlow {
		q, err := svc.NextQuestion(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, expected.FieldName, q.FieldName)
		assert.Equal(t, expected.Question, q.Question)
		assert.Equal(t, expected.Options, q.Options)

		require.NoError(t, svc.SubmitAnswer(session.ID, q.FieldName, store.StringValue("답변")))
	}

	q, err := svc.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, InputComplete, q.InputType)
	assert.Equal(t, "complete", q.FieldName)
}

func TestNextQuestion_KeyPresenceNotTruthiness(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	// An empty answer still marks the field complete
	require.NoError(t, svc.SubmitAnswer(session.ID, "reference_url", store.StringValue("")))

	q, err := svc.NextQuestion(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "product_name", q.FieldName)
}

func TestNextQuestion_SeededReferenceURLIsSkipped(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("https://example.com/ref")
	require.NoError(t, err)

	q, err := svc.NextQuestion(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "product_name", q.FieldName)
}

func TestSubmitAnswer_LastWriteWins(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	require.NoError(t, svc.SubmitAnswer(session.ID, "product_name", store.StringValue("첫번째")))
	require.NoError(t, svc.SubmitAnswer(session.ID, "product_name", store.StringValue("두번째")))

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "두번째", got.Context.GetString("product_name", ""))
	assert.Len(t, got.Context, 1)
}

func TestSubmitAnswer_AcceptsAdaptiveFields(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	require.NoError(t, svc.SubmitAnswer(session.ID, "shipping_policy", store.StringValue("무료배송")))

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.True(t, got.Context.Has("shipping_policy"))
}

func TestNextQuestion_CompletionMarksSession(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	ctx := context.Background()
	for _, q := range InterviewFlow {
		require.NoError(t, svc.SubmitAnswer(session.ID, q.FieldName, store.StringValue("v")))

		got, err := svc.GetSession(session.ID)
		require.NoError(t, err)
		assert.Equal(t, store.StatusInProgress, got.Status, "only the terminal call may change status")
	}

	_, err = svc.NextQuestion(ctx, session.ID)
	require.NoError(t, err)

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
}

func TestNextQuestion_AdaptiveFollowup(t *testing.T) {
	gen := &fakeTextGen{fn: func(string) (string, error) {
		return `{"question": "배송 정책이 있나요?", "field_name": "shipping_policy", "input_type": "text"}`, nil
	}}
	svc := NewInterviewService(newTestStore(t), gen)
	session, err := svc.CreateSession("")
	require.NoError(t, err)

	ctx := context.Background()
	for _, q := range InterviewFlow {
		require.NoError(t, svc.SubmitAnswer(session.ID, q.FieldName, store.StringValue("v")))
	}

	q, err := svc.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipping_policy", q.FieldName)
	assert.Equal(t, InputText, q.InputType)

	// The followup is transient: session stays in progress
	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, got.Status)

	// Answering it lets the generator decide again; COMPLETE finishes
	require.NoError(t, svc.SubmitAnswer(session.ID, "shipping_policy", store.StringValue("무료배송")))
	gen.fn = func(string) (string, error) { return "COMPLETE", nil }

	q, err = svc.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, InputComplete, q.InputType)
}

func TestNextQuestion_GeneratorFailureCompletes(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, error)
	}{
		{"transport error", func(string) (string, error) { return "", errors.New("upstream down") }},
		{"unparseable reply", func(string) (string, error) { return "그냥 텍스트", nil }},
		{"fenced COMPLETE", func(string) (string, error) { return "```\nCOMPLETE\n```", nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewInterviewService(newTestStore(t), &fakeTextGen{fn: tt.fn})
			session, err := svc.CreateSession("")
			require.NoError(t, err)

			for _, q := range InterviewFlow {
				require.NoError(t, svc.SubmitAnswer(session.ID, q.FieldName, store.StringValue("v")))
			}

			q, err := svc.NextQuestion(context.Background(), session.ID)
			require.NoError(t, err)
			assert.Equal(t, InputComplete, q.InputType)

			got, err := svc.GetSession(session.ID)
			require.NoError(t, err)
			assert.Equal(t, store.StatusCompleted, got.Status)
		})
	}
}

func TestNextQuestion_SessionNotFound(t *testing.T) {
	svc := NewInterviewService(newTestStore(t), nil)

	_, err := svc.NextQuestion(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.SubmitAnswer("no-such-session", "product_name", store.StringValue("x"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
