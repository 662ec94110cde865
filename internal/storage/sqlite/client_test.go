package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-rag/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, client.InitSchema())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestChatMessages_RoundTrip(t *testing.T) {
	client := newTestClient(t)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, client.InsertMessage(&models.ChatMessage{
		ID: "m1", SessionID: "s1", Role: "user",
		Content: "tell me about Gullfoss", CreatedAt: now,
	}))
	require.NoError(t, client.InsertMessage(&models.ChatMessage{
		ID: "m2", SessionID: "s1", Role: "assistant",
		Content: "Gullfoss is a waterfall.", CreatedAt: now.Add(time.Second),
	}))

	messages, err := client.ListMessages("s1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)

	messages, err = client.ListMessages("other", 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestEvaluations_RoundTrip(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.InsertEvaluation(&models.Evaluation{
		Question:  "tell me about Gullfoss",
		Verdict:   "**Score:** 9",
		CreatedAt: time.Now(),
	}))

	evals, err := client.ListEvaluations(5)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "**Score:** 9", evals[0].Verdict)
	assert.NotZero(t, evals[0].ID)
}
