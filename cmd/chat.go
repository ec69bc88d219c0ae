package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/internal/conversation"
	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/pubsub"
	"github.com/parley-ai/parley/internal/session"
)

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, _ := cmd.Flags().GetString("model") //nolint:errcheck
	if model == "" {
		model = a.cfg.Model()
	}

	sess, err := resolveChatSession(ctx, cmd, a)
	if err != nil {
		return err
	}

	fmt.Printf("Session: %s (%s)\n", sess.Title, sess.ID)
	fmt.Printf("Model: %s\n", model)
	if err := replayHistory(ctx, a, sess.ID); err != nil {
		return err
	}
	fmt.Println(`Type a prompt, or /help for commands.`)

	return chatLoop(ctx, a, sess.ID, model)
}

// resolveChatSession picks the session to chat in: --session resumes one,
// --project starts a fresh one under that project, otherwise a fresh
// standalone session.
func resolveChatSession(ctx context.Context, cmd *cobra.Command, a *app) (*session.Session, error) {
	sessionID, _ := cmd.Flags().GetString("session") //nolint:errcheck
	if sessionID != "" {
		sess, err := a.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("resuming session %q: %w", sessionID, err)
		}
		return sess, nil
	}

	projectRef, _ := cmd.Flags().GetString("project") //nolint:errcheck
	projectID := ""
	if projectRef != "" {
		proj, err := findProject(ctx, a, projectRef)
		if err != nil {
			return nil, err
		}
		projectID = proj.ID
	}

	return a.sessions.Create(ctx, projectID)
}

func chatLoop(ctx context.Context, a *app, sessionID, model string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/help":
			printChatHelp()
			continue
		case line == "/new":
			sess, err := a.sessions.Create(ctx, "")
			if err != nil {
				return fmt.Errorf("creating session: %w", err)
			}
			sessionID = sess.ID
			fmt.Printf("Started new session %s\n", sessionID)
			continue
		case line == "/clear":
			if err := a.messages.Clear(ctx, sessionID); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Println("Cleared conversation history.")
			continue
		case strings.HasPrefix(line, "/voice"):
			prompt, err := transcribePrompt(ctx, a, strings.TrimSpace(strings.TrimPrefix(line, "/voice")))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Transcription failed: %v\n", err)
				continue
			}
			fmt.Printf("You said: %s\n", prompt)
			line = prompt
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(os.Stderr, "Unknown command %q. Try /help.\n", line)
			continue
		}

		if err := submitAndRender(ctx, a, sessionID, line, model); err != nil {
			return err
		}
	}
}

// submitAndRender runs one turn, echoing streamed fragments as they arrive.
func submitAndRender(ctx context.Context, a *app, sessionID, prompt, model string) error {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := a.hub.Turn.Subscribe(turnCtx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		renderTurnEvents(sub, sessionID)
	}()

	err := a.orch.SubmitTurn(ctx, sessionID, prompt, model)
	cancel()
	<-done

	if errors.Is(err, conversation.ErrTurnActive) {
		fmt.Fprintln(os.Stderr, "A reply is still streaming for this session.")
		return nil
	}
	return err
}

func renderTurnEvents(sub <-chan pubsub.Event[events.TurnEvent], sessionID string) {
	for ev := range sub {
		if ev.Payload.SessionID != sessionID {
			continue
		}
		switch ev.Payload.Type {
		case events.TurnEventFragment:
			fmt.Print(ev.Payload.Delta)
		case events.TurnEventCompleted:
			fmt.Println()
			return
		case events.TurnEventFailed:
			fmt.Printf("Error: %s\n", ev.Payload.Cause)
			return
		case events.TurnEventStarted:
		}
	}
}

// replayHistory prints the session's committed messages from the view's
// opening snapshot, so a resumed chat shows where it left off.
func replayHistory(ctx context.Context, a *app, sessionID string) error {
	snapshots, err := a.view.Attach(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	defer a.view.Detach()

	snapshot, ok := <-snapshots
	if !ok {
		return nil
	}
	for _, m := range snapshot.Messages {
		speaker := "You"
		if m.Role != "user" {
			speaker = "Assistant"
		}
		fmt.Printf("%s: %s\n", speaker, m.Text)
	}
	if len(snapshot.Messages) > 0 {
		fmt.Println()
	}
	return nil
}

// transcribePrompt turns a recorded audio file into prompt text.
func transcribePrompt(ctx context.Context, a *app, path string) (string, error) {
	if path == "" {
		return "", errors.New("usage: /voice <audio-file>")
	}
	return newTranscriber(a.cfg).TranscribeFile(ctx, path)
}

func printChatHelp() {
	fmt.Println(`Commands:
  /new            start a new session
  /clear          delete this session's history
  /voice <file>   transcribe an audio file and send it as the prompt
  /help           show this help
  /quit           leave the chat`)
}
