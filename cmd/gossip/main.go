package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gossip/client/internal/config"
	"gossip/client/internal/controller"
	"gossip/client/internal/forum"
	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	client := forum.NewClientWith(cfg.StoreURL, &http.Client{Timeout: cfg.HTTPTimeout})

	var store session.Store
	var err error
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for session storage")
		store, err = session.NewRedisStore(cfg.RedisURL)
	} else {
		store, err = session.NewSQLiteStore(ctx, cfg.SessionDBPath)
	}
	if err != nil {
		log.Fatalf("session store failed: %v", err)
	}
	defer store.Close()

	sess, err := session.New(ctx, store, client)
	if err != nil {
		log.Fatalf("session load failed: %v", err)
	}

	a := newApp(client, sess, policy.New(cfg.AdminUser), os.Stdin, os.Stdout)
	if err := a.run(ctx); err != nil {
		log.Fatalf("gossip: %v", err)
	}
}

// app owns the three views and drives them from a line-oriented prompt.
// It doubles as the navigator, the global invalidator and the yes/no
// confirmer the views need, since all three reduce to terminal IO here.
type app struct {
	client  *forum.Client
	session *session.Session

	sidebar *controller.Sidebar
	feed    *controller.Feed
	detail  *controller.Detail

	in  *bufio.Scanner
	out io.Writer
}

func newApp(client *forum.Client, sess *session.Session, pol *policy.Policy, in io.Reader, out io.Writer) *app {
	a := &app{
		client:  client,
		session: sess,
		in:      bufio.NewScanner(in),
		out:     out,
	}
	a.sidebar = controller.NewSidebar(client, sess, pol, a, a, a)
	a.feed = controller.NewFeed(client, sess, pol, a)
	a.detail = controller.NewDetail(client, sess, pol, a)
	return a
}

// GoHome drops the topic filter and leaves any open post.
func (a *app) GoHome() {
	a.sidebar.SetActiveTopic(nil)
	a.feed.SetTopic(nil)
}

// ReloadAll refetches everything currently on screen.
func (a *app) ReloadAll(ctx context.Context) {
	if err := a.sidebar.Load(ctx); err != nil {
		log.Printf("reload topics: %v", err)
	}
	if err := a.feed.Load(ctx); err != nil {
		log.Printf("reload posts: %v", err)
	}
}

// Confirm asks a yes/no question on the terminal. Anything but y/yes
// declines.
func (a *app) Confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	if !a.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(a.in.Text()))
	return answer == "y" || answer == "yes"
}

func (a *app) run(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	a.ReloadAll(ctx)
	a.printTopics()
	a.printPosts()

	for {
		fmt.Fprint(a.out, "> ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := a.dispatch(ctx, line); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

// requireLogin blocks until an identity claim succeeds. A claim persisted
// from an earlier run skips the prompt.
func (a *app) requireLogin(ctx context.Context) error {
	if username, ok := a.session.CurrentUser(); ok {
		fmt.Fprintf(a.out, "welcome back, %s\n", username)
		return nil
	}
	for {
		fmt.Fprint(a.out, "username: ")
		if !a.in.Scan() {
			if err := a.in.Err(); err != nil {
				return err
			}
			return fmt.Errorf("no username given")
		}
		username := strings.TrimSpace(a.in.Text())
		if err := a.session.Login(ctx, username); err != nil {
			fmt.Fprintf(a.out, "login failed: %v\n", err)
			continue
		}
		return nil
	}
}

func (a *app) dispatch(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "whoami":
		username, ok := a.session.CurrentUser()
		if !ok {
			fmt.Fprintln(a.out, "not logged in")
			return nil
		}
		fmt.Fprintln(a.out, username)
		return nil
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		return a.requireLogin(ctx)

	case "topics":
		if err := a.sidebar.Load(ctx); err != nil {
			return err
		}
		a.printTopics()
		return nil
	case "open":
		return a.openTopic(ctx, rest)
	case "posts":
		if err := a.feed.Load(ctx); err != nil {
			return err
		}
		a.printPosts()
		return nil
	case "read":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: read <post-id>")
		}
		if err := a.detail.Load(ctx, id); err != nil {
			return err
		}
		a.printDetail()
		return nil

	case "post":
		return a.createPost(ctx, rest)
	case "edit-post":
		return a.editPost(ctx, rest)
	case "delete-post":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: delete-post <id>")
		}
		for _, p := range a.feed.Posts() {
			if p.ID == id && !a.feed.CanModify(p) {
				return controller.ErrNotAllowed
			}
		}
		if err := a.feed.Delete(ctx, id); err != nil {
			return err
		}
		a.printPosts()
		return nil

	case "comment":
		a.detail.SetDraft(rest)
		if err := a.detail.SubmitComment(ctx); err != nil {
			return err
		}
		a.printDetail()
		return nil
	case "edit-comment":
		idStr, content, _ := strings.Cut(rest, " ")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return fmt.Errorf("usage: edit-comment <id> <content>")
		}
		if err := a.detail.EditComment(ctx, id, content); err != nil {
			return err
		}
		a.printDetail()
		return nil
	case "delete-comment":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: delete-comment <id>")
		}
		if err := a.detail.DeleteComment(ctx, id); err != nil {
			return err
		}
		a.printDetail()
		return nil

	case "new-topic":
		if err := a.sidebar.CreateTopic(ctx, rest); err != nil {
			return err
		}
		a.printTopics()
		return nil
	case "rename-topic":
		idStr, name, _ := strings.Cut(rest, " ")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return fmt.Errorf("usage: rename-topic <id> <name>")
		}
		if err := a.sidebar.RenameTopic(ctx, id, name); err != nil {
			return err
		}
		a.printTopics()
		return nil
	case "delete-topic":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: delete-topic <id>")
		}
		if err := a.sidebar.DeleteTopic(ctx, id); err != nil {
			return err
		}
		a.printTopics()
		return nil

	case "batch-topics":
		return a.runBatch(ctx, a.sidebar.Batch(), func() { a.printTopics() })
	case "batch-comments":
		return a.runBatch(ctx, a.detail.Batch(), func() { a.printDetail() })
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (a *app) openTopic(ctx context.Context, arg string) error {
	if arg == "" || arg == "all" {
		a.GoHome()
	} else {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("usage: open <topic-id|all>")
		}
		a.sidebar.SetActiveTopic(&id)
		a.feed.SetTopic(&id)
	}
	if err := a.feed.Load(ctx); err != nil {
		return err
	}
	a.printPosts()
	return nil
}

// createPost reads title and body as "title | body" after the command.
func (a *app) createPost(ctx context.Context, rest string) error {
	title, description, ok := strings.Cut(rest, "|")
	if !ok {
		return fmt.Errorf("usage: post <title> | <description>")
	}
	a.feed.OpenCreate()
	a.feed.SetTitle(strings.TrimSpace(title))
	a.feed.SetDescription(strings.TrimSpace(description))
	if err := a.feed.Submit(ctx); err != nil {
		return err
	}
	a.printPosts()
	return nil
}

func (a *app) editPost(ctx context.Context, rest string) error {
	idStr, fields, _ := strings.Cut(rest, " ")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return fmt.Errorf("usage: edit-post <id> <title> | <description>")
	}
	var target *forum.Post
	for _, p := range a.feed.Posts() {
		if p.ID == id {
			post := p
			target = &post
			break
		}
	}
	if target == nil {
		return fmt.Errorf("post %d is not in the current feed", id)
	}
	if !a.feed.CanModify(*target) {
		return controller.ErrNotAllowed
	}
	title, description, ok := strings.Cut(fields, "|")
	if !ok {
		return fmt.Errorf("usage: edit-post <id> <title> | <description>")
	}
	a.feed.OpenEdit(*target)
	a.feed.SetTitle(strings.TrimSpace(title))
	a.feed.SetDescription(strings.TrimSpace(description))
	if err := a.feed.Submit(ctx); err != nil {
		return err
	}
	a.printPosts()
	return nil
}

// runBatch drives one mass-delete session: toggle ids line by line, then
// "go" to confirm or "cancel" to leave everything standing.
func (a *app) runBatch(ctx context.Context, batch *controller.BatchDelete, redraw func()) error {
	if err := batch.Enter(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "mass delete: enter ids to toggle, 'go' to delete, 'cancel' to abort")
	for {
		fmt.Fprintf(a.out, "selected %v> ", batch.Selected())
		if !a.in.Scan() {
			batch.Exit()
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		switch line {
		case "cancel":
			batch.Exit()
			return nil
		case "go":
			if err := batch.Confirm(ctx); err != nil {
				return err
			}
			if batch.State() == controller.BatchIdle {
				redraw()
				return nil
			}
			continue
		default:
			id, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(a.out, "enter an id, 'go' or 'cancel'")
				continue
			}
			batch.ToggleSelect(id)
		}
	}
}

func (a *app) printTopics() {
	topics := a.sidebar.Topics()
	if len(topics) == 0 {
		fmt.Fprintln(a.out, "no circles yet")
		return
	}
	fmt.Fprintln(a.out, "circles:")
	for _, topic := range topics {
		marker := " "
		if a.sidebar.IsActive(topic.ID) {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s [%d] %s\n", marker, topic.ID, topic.Name)
	}
}

func (a *app) printPosts() {
	if a.feed.Empty() {
		fmt.Fprintln(a.out, "no gossips here yet")
		return
	}
	for _, post := range a.feed.Posts() {
		fmt.Fprintf(a.out, "[%d] %s: %s (%s)\n", post.ID, post.Title, post.Description, post.Username)
	}
}

func (a *app) printDetail() {
	post, ok := a.detail.Post()
	if !ok {
		fmt.Fprintln(a.out, "no post open")
		return
	}
	fmt.Fprintf(a.out, "[%d] %s by %s\n%s\n", post.ID, post.Title, post.Username, post.Description)
	fmt.Fprintf(a.out, "%d chatters:\n", a.detail.CommentCount())
	for _, c := range a.detail.Comments() {
		fmt.Fprintf(a.out, "  [%d] %s: %s\n", c.ID, c.Author(), c.Content)
	}
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  topics                      list circles
  open <topic-id|all>         filter the feed
  posts                       list gossips for the current filter
  read <post-id>              open one gossip with its chatters
  post <title> | <desc>       create a gossip
  edit-post <id> <t> | <d>    edit a gossip you may modify
  delete-post <id>            delete a gossip (asks first)
  comment <text>              add a chatter to the open gossip
  edit-comment <id> <text>    edit a chatter you may modify
  delete-comment <id>         delete a chatter you may modify
  new-topic <name>            create a circle (open to everyone)
  rename-topic <id> <name>    rename a circle (admin)
  delete-topic <id>           delete a circle (admin, asks first)
  batch-topics                mass delete circles (admin)
  batch-comments              mass delete chatters (admin)
  whoami / logout / quit
`)
}
