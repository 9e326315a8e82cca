package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

var testUser = chat.User{ID: "u-student", DisplayName: "Ana", Role: chat.RoleMentee}

func testConversation(id string, updatedAt time.Time) chat.Conversation {
	c := chat.Conversation{ID: id, UpdatedAt: updatedAt}
	c.Participants[0] = testUser
	c.Participants[1] = chat.User{ID: "u-" + id, DisplayName: "Mentor " + id, Role: chat.RoleMentor}
	return c
}

func TestDirectoryLoadSortsByRecency(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := newFakeBackend()
	api.addChat(testConversation("old", base))
	api.addChat(testConversation("new", base.Add(time.Hour)))
	api.addChat(testConversation("mid", base.Add(time.Minute)))

	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	ids := snapshotIDs(d)
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestDirectoryLoadFailureLeavesCollectionEmpty(t *testing.T) {
	api := newFakeBackend()
	api.listErr = errors.New("gateway timeout")

	d := NewDirectory(testUser, api, zerolog.Nop())
	err := d.Load(context.Background())

	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Empty(t, d.Snapshot())
}

func TestDirectoryUpsertReordersCollection(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := newFakeBackend()
	api.addChat(testConversation("a", base.Add(time.Hour)))
	api.addChat(testConversation("b", base))

	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))
	require.Equal(t, []string{"a", "b"}, snapshotIDs(d))

	summary := chat.MessageSummary{Content: "ping", SenderID: "u-b", CreatedAt: base.Add(2 * time.Hour)}
	d.UpsertFromEvent("b", wire.ChatDelta{ID: "b", LastMessage: &summary, UpdatedAt: base.Add(2 * time.Hour)})

	chats := d.Snapshot()
	require.Equal(t, []string{"b", "a"}, snapshotIDs(d))
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "ping", chats[0].LastMessage.Content)
}

func TestDirectoryUpsertIgnoresStaleTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := newFakeBackend()
	api.addChat(testConversation("a", base))

	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	d.UpsertFromEvent("a", wire.ChatDelta{ID: "a", UpdatedAt: base.Add(-time.Hour)})

	assert.Equal(t, base, d.Snapshot()[0].UpdatedAt)
}

func TestDirectoryUpsertUnknownIDIsDropped(t *testing.T) {
	d := NewDirectory(testUser, newFakeBackend(), zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	d.UpsertFromEvent("never-seen", wire.ChatDelta{ID: "never-seen", UpdatedAt: time.Now()})

	assert.Empty(t, d.Snapshot())
}

func TestDirectoryCreatePrependsNewConversation(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := newFakeBackend()
	api.addChat(testConversation("existing", base))

	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	conv, err := d.Create(context.Background(), "u-mentor")
	require.NoError(t, err)
	require.NotNil(t, conv)

	ids := snapshotIDs(d)
	require.Len(t, ids, 2)
	assert.Equal(t, conv.ID, ids[0])
}

func TestDirectoryCreateExistingPairIsResumedNotDuplicated(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := newFakeBackend()
	api.addChat(testConversation("existing", base))

	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	conv, err := d.Create(context.Background(), "u-existing")
	require.NoError(t, err)
	assert.Equal(t, "existing", conv.ID)
	assert.Len(t, d.Snapshot(), 1)
}

func TestDirectoryCreateFailureLeavesCollectionUnchanged(t *testing.T) {
	api := newFakeBackend()
	api.addChat(testConversation("a", time.Now().UTC()))
	d := NewDirectory(testUser, api, zerolog.Nop())
	require.NoError(t, d.Load(context.Background()))

	api.createErr = errors.New("boom")
	_, err := d.Create(context.Background(), "u-mentor")

	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, []string{"a"}, snapshotIDs(d))
}

func TestDirectoryCreateRequiresCounterpart(t *testing.T) {
	d := NewDirectory(testUser, newFakeBackend(), zerolog.Nop())
	_, err := d.Create(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoCounterpart)
}

func snapshotIDs(d *Directory) []string {
	chats := d.Snapshot()
	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	return ids
}
