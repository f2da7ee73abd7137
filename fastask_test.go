package main

import (
	"context"
	"strings"
	"testing"

	"github.com/fastask/fastask/internal/cache"
	"github.com/fastask/fastask/internal/proto"
	"github.com/fastask/fastask/internal/screenshot"
	"github.com/stretchr/testify/require"
)

func TestFindCacheOpsDetails(t *testing.T) {
	newModel := func(t *testing.T) *FastAsk {
		t.Helper()
		return &FastAsk{
			Config: &Config{},
			db:     testDB(t),
		}
	}

	t.Run("all empty", func(t *testing.T) {
		msg := newModel(t).findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Empty(t, dets.ReadID)
		require.NotEmpty(t, dets.WriteID)
		require.Empty(t, dets.Title)
	})

	t.Run("show id", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message")
		m.Config.Show = id[:8]
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
	})

	t.Run("show title", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.Show = "message 1"
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
	})

	t.Run("continue id", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message")
		m.Config.Continue = id[:5]
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
		require.Equal(t, id, dets.WriteID)
	})

	t.Run("continue title", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.Continue = "message 1"
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
	})

	t.Run("continue latest", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.Continue = "message 2"
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
		require.Equal(t, "message 2", dets.Title)
		require.NotEmpty(t, dets.WriteID)
	})

	t.Run("continue last", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.ContinueLast = true
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
	})

	t.Run("write", func(t *testing.T) {
		m := newModel(t)
		m.Config.Save = "some title"
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Empty(t, dets.ReadID)
		require.NotEmpty(t, dets.WriteID)
		require.NotEqual(t, "some title", dets.WriteID)
		require.Equal(t, "some title", dets.Title)
	})

	t.Run("continue id and write with title", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.Save = "some title"
		m.Config.Continue = id[:10]
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
		require.NotEmpty(t, dets.WriteID)
		require.NotEqual(t, id, dets.WriteID)
		require.NotEqual(t, "some title", dets.WriteID)
		require.Equal(t, "some title", dets.Title)
	})

	t.Run("continue title and write with title", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		save(t, m.db, id, "message 1")
		m.Config.Save = "some title"
		m.Config.Continue = "message 1"
		msg := m.findCacheOpsDetails()()
		dets := msg.(cacheDetailsMsg)
		require.Equal(t, id, dets.ReadID)
		require.NotEmpty(t, dets.WriteID)
		require.NotEqual(t, id, dets.WriteID)
		require.NotEqual(t, "some title", dets.WriteID)
		require.Equal(t, "some title", dets.Title)
	})

	t.Run("show invalid", func(t *testing.T) {
		m := newModel(t)
		m.Config.Show = "aaa"
		msg := m.findCacheOpsDetails()()
		err := msg.(fastaskError)
		require.Equal(t, "Could not find the conversation", err.reason)
		require.EqualError(t, err, errNoMatches.Error())
	})
}

func TestSetupMessages(t *testing.T) {
	t.Run("system prompt goes first", func(t *testing.T) {
		m := &FastAsk{Config: &Config{SystemPrompt: "be brief"}}
		m.setupMessages("what is DNS?", nil)
		require.Len(t, m.messages, 2)
		require.Equal(t, proto.RoleSystem, m.messages[0].Role)
		require.Equal(t, "be brief", m.messages[0].Content)
		require.Equal(t, proto.RoleUser, m.messages[1].Role)
	})

	t.Run("system prompt not repeated on continue", func(t *testing.T) {
		m := &FastAsk{Config: &Config{SystemPrompt: "be brief"}}
		m.baseMessages = []proto.Message{
			{Role: proto.RoleSystem, Content: "be brief"},
			{Role: proto.RoleUser, Content: "what is DNS?"},
			{Role: proto.RoleAssistant, Content: "a phonebook"},
		}
		m.setupMessages("and DHCP?", nil)
		require.Len(t, m.messages, 4)
		require.Equal(t, proto.RoleSystem, m.messages[0].Role)
		require.Equal(t, "and DHCP?", m.messages[3].Content)
	})

	t.Run("rebuilt on every attempt", func(t *testing.T) {
		m := &FastAsk{Config: &Config{SystemPrompt: "be brief"}}
		m.baseMessages = []proto.Message{
			{Role: proto.RoleUser, Content: "what is DNS?"},
			{Role: proto.RoleAssistant, Content: "a phonebook"},
		}
		m.setupMessages(strings.Repeat("tell me everything ", 100), nil)
		m.setupMessages("tell me the gist", nil)
		var questions int
		for _, msg := range m.messages[len(m.baseMessages)+1:] {
			if msg.Role == proto.RoleUser {
				questions++
			}
		}
		require.Equal(t, 1, questions)
		require.Equal(t, "tell me the gist", m.messages[len(m.messages)-1].Content)
	})

	t.Run("attaches images to the question", func(t *testing.T) {
		m := &FastAsk{Config: &Config{}}
		m.setupMessages("what is this?", []proto.ImageContent{
			{Data: []byte("png"), MimeType: "image/png", Filename: "shot.png"},
		})
		require.Len(t, m.messages, 1)
		require.Len(t, m.messages[0].Images, 1)
		require.Equal(t, "shot.png", m.messages[0].Images[0].Filename)
	})
}

func TestSaveConversation(t *testing.T) {
	ctx := context.Background()
	newModel := func(t *testing.T) *FastAsk {
		t.Helper()
		convoCache, err := cache.NewConversations(t.TempDir())
		require.NoError(t, err)
		shots, err := screenshot.NewManager(t.TempDir())
		require.NoError(t, err)
		return &FastAsk{
			Config: &Config{ScreenshotKeep: 5},
			db:     testDB(t),
			cache:  convoCache,
			shots:  shots,
		}
	}

	t.Run("saves row and transcript", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		m.Config.cacheWriteToID = id
		m.Input = "what is DNS?"
		m.Output = "a phonebook"
		m.messages = []proto.Message{
			{Role: proto.RoleUser, Content: "what is DNS?"},
			{Role: proto.RoleAssistant, Content: "a phonebook"},
		}
		require.NoError(t, m.saveConversation(ctx))

		convo, err := m.db.Find(ctx, id[:8])
		require.NoError(t, err)
		require.Equal(t, "a phonebook", convo.Answer)

		var messages []proto.Message
		require.NoError(t, m.cache.Read(id, &messages))
		require.Len(t, messages, 2)
	})

	t.Run("fills in the answer of the early row", func(t *testing.T) {
		m := newModel(t)
		id := newConversationID()
		m.Config.cacheWriteToID = id
		m.Input = "what is DNS?"
		require.NoError(t, m.db.Save(ctx, m.historyRow()))
		m.rowSaved = true

		m.Output = "a phonebook\n\n" + interruptedMarker
		require.NoError(t, m.saveConversation(ctx))

		convo, err := m.db.Find(ctx, id[:8])
		require.NoError(t, err)
		require.Contains(t, convo.Answer, interruptedMarker)
		require.NotNil(t, convo.UpdatedAt)
	})

	t.Run("no-cache skips everything", func(t *testing.T) {
		m := newModel(t)
		m.Config.NoCache = true
		m.Output = "whatever"
		require.NoError(t, m.saveConversation(ctx))
		_, err := m.db.FindHEAD(ctx)
		require.ErrorIs(t, err, errNoMatches)
	})
}

func TestCutPrompt(t *testing.T) {
	t.Run("proportional cut", func(t *testing.T) {
		prompt := strings.Repeat("a", 1000)
		out := cutPrompt("This model's maximum context length is 100 tokens, however you requested 150 tokens", prompt)
		require.Less(t, len(out), len(prompt))
		require.NotEmpty(t, out)
	})

	t.Run("unparseable message halves", func(t *testing.T) {
		prompt := strings.Repeat("a", 1000)
		out := cutPrompt("something went wrong", prompt)
		require.Len(t, out, 500)
	})

	t.Run("overflow larger than prompt halves", func(t *testing.T) {
		prompt := strings.Repeat("a", 10)
		out := cutPrompt("maximum context length is 100 tokens, however you requested 9000 tokens", prompt)
		require.Len(t, out, 5)
	})
}

func TestLastAttachment(t *testing.T) {
	require.Empty(t, lastAttachment(nil))
	require.Empty(t, lastAttachment([]proto.Message{
		{Role: proto.RoleUser, Content: "hi"},
	}))
	require.Equal(t, "b.png", lastAttachment([]proto.Message{
		{Role: proto.RoleUser, Images: []proto.ImageContent{{Filename: "a.png"}}},
		{Role: proto.RoleAssistant},
		{Role: proto.RoleUser, Images: []proto.ImageContent{{Filename: "b.png"}}},
	}))
}
