package main

import (
	"context"
	"fmt"
	"os"

	timeago "github.com/caarlos0/timea.go"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/fastask/fastask/internal/cache"
	"github.com/fastask/fastask/internal/proto"
	"github.com/fastask/fastask/internal/screenshot"
)

func listConversations(ctx context.Context, db *historyDB, search string, limit int) error {
	conversations, err := db.List(ctx, search, limit, 0)
	if err != nil {
		return fastaskError{err, "Couldn't list the conversation history."}
	}
	if len(conversations) == 0 {
		fmt.Fprintln(os.Stderr, "No conversations found.")
		return nil
	}

	if isOutputTTY() {
		fmt.Fprintf(
			os.Stdout,
			"Conversations %s\n",
			stdoutStyles().Comment.Render(fmt.Sprintf("(%d)", len(conversations))),
		)
	}
	for _, convo := range conversations {
		when := convo.CreatedAt
		if convo.UpdatedAt != nil {
			when = *convo.UpdatedAt
		}
		marker := ""
		if convo.HasScreenshot {
			marker = stdoutStyles().Bullet.String()
		}
		fmt.Fprintf(
			os.Stdout,
			"%s %s%s %s\n",
			stdoutStyles().ConvoID.Render(convo.ID[:convoIDShort]),
			stdoutStyles().Comment.Render(firstLine(deref(convo.Title), convo.Question)),
			marker,
			stdoutStyles().Timeago.Render(timeago.Of(when)),
		)
	}
	return nil
}

func showConversation(ctx context.Context, db *historyDB, convoCache *cache.Conversations, cfg *Config) error {
	var convo *Conversation
	var err error
	if cfg.ShowLast {
		convo, err = db.FindHEAD(ctx)
	} else {
		convo, err = db.Find(ctx, cfg.Show)
	}
	if err != nil {
		return fastaskError{err, "Could not find the conversation"}
	}

	var messages []proto.Message
	if err := convoCache.Read(convo.ID, &messages); err != nil || len(messages) == 0 {
		// no transcript on disk, reconstruct from the history row
		messages = []proto.Message{
			{Role: proto.RoleUser, Content: convo.Question},
			{Role: proto.RoleAssistant, Content: convo.Answer},
		}
	}
	transcript := proto.Conversation(messages).String()

	if !cfg.Raw && isOutputTTY() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(cfg.WordWrap),
		)
		if err == nil {
			if out, err := r.Render(transcript); err == nil {
				fmt.Fprint(os.Stdout, out)
				return nil
			}
		}
	}
	fmt.Fprint(os.Stdout, transcript)
	return nil
}

func deleteConversation(ctx context.Context, db *historyDB, convoCache *cache.Conversations, in string) error {
	convo, err := db.Find(ctx, in)
	if err != nil {
		return fastaskError{err, "Couldn't find conversation to delete."}
	}
	if err := db.Delete(ctx, convo.ID); err != nil {
		return fastaskError{err, "Couldn't delete conversation."}
	}
	if err := convoCache.Delete(convo.ID); err != nil {
		return fastaskError{err, "Couldn't delete conversation."}
	}
	if !config.Quiet {
		fmt.Fprintln(os.Stderr, "Conversation deleted:", convo.ID[:convoIDShort])
	}
	return nil
}

func clearHistory(
	ctx context.Context,
	db *historyDB,
	convoCache *cache.Conversations,
	shots *screenshot.Manager,
) error {
	if isInputTTY() {
		var confirm bool
		err := huh.NewConfirm().
			Title("Delete the entire history?").
			Description("Every saved conversation and screenshot goes away.").
			Value(&confirm).
			Run()
		if err != nil {
			return fastaskError{err, "Canceled."}
		}
		if !confirm {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	conversations, err := db.List(ctx, "", 0, 0)
	if err != nil {
		return fastaskError{err, "Couldn't list the conversation history."}
	}
	for _, convo := range conversations {
		// transcripts may be missing, that's fine
		_ = convoCache.Delete(convo.ID)
	}
	if err := db.Clear(ctx); err != nil {
		return fastaskError{err, "Couldn't clear the history."}
	}
	if _, err := shots.Prune(0); err != nil {
		return fastaskError{err, "Couldn't remove the screenshots."}
	}
	if !config.Quiet {
		fmt.Fprintln(os.Stderr, "History cleared.")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
