package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"gossip/client/internal/forum"
	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

// fakeStore is an in-memory rendition of the remote store, served over
// httptest. It records every request in arrival order so tests can
// assert on counts and sequencing.
type fakeStore struct {
	srv *httptest.Server

	mu       sync.Mutex
	nextID   int
	topics   map[int]forum.Topic
	posts    map[int]forum.Post
	comments map[int]forum.Comment
	log      []string

	failDeletes map[int]bool

	holdTopics    chan struct{}
	topicsBlocked chan struct{}
	holdPosts     chan struct{}
	postsBlocked  chan struct{}
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	s := &fakeStore{
		nextID:      100,
		topics:      make(map[int]forum.Topic),
		posts:       make(map[int]forum.Post),
		comments:    make(map[int]forum.Comment),
		failDeletes: make(map[int]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /topics", s.handleListTopics)
	mux.HandleFunc("POST /topics", s.handleCreateTopic)
	mux.HandleFunc("PATCH /topics/{id}", s.handleRenameTopic)
	mux.HandleFunc("DELETE /topics/{id}", s.handleDeleteTopic)
	mux.HandleFunc("GET /posts", s.handleListPosts)
	mux.HandleFunc("POST /posts", s.handleCreatePost)
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.HandleFunc("PATCH /posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /posts/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /posts/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("PATCH /posts/{id}/comments/{commentId}", s.handleUpdateComment)
	mux.HandleFunc("DELETE /posts/{id}/comments/{commentId}", s.handleDeleteComment)

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *fakeStore) client() *forum.Client {
	return forum.NewClient(s.srv.URL)
}

func (s *fakeStore) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, r.Method+" "+r.URL.RequestURI())
}

func (s *fakeStore) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

func (s *fakeStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// blockNextTopicsList stalls the next GET /topics after it snapshots its
// response. The test learns the handler is stalled via topicsBlocked and
// lets it finish with the returned release func. Used to deliver a
// response after its triggering context has changed.
func (s *fakeStore) blockNextTopicsList() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdTopics = make(chan struct{})
	s.topicsBlocked = make(chan struct{}, 1)
	hold := s.holdTopics
	return func() { close(hold) }
}

// blockNextPostsList is blockNextTopicsList for GET /posts.
func (s *fakeStore) blockNextPostsList() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdPosts = make(chan struct{})
	s.postsBlocked = make(chan struct{}, 1)
	hold := s.holdPosts
	return func() { close(hold) }
}

// failDelete makes any DELETE for the given entity id answer 500.
func (s *fakeStore) failDelete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeletes[id] = true
}

func (s *fakeStore) assign() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addTopic(name string) forum.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := forum.Topic{ID: s.assign(), Name: name}
	s.topics[t.ID] = t
	return t
}

func (s *fakeStore) addPost(topicID int, title, description, username string) forum.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := forum.Post{
		ID:          s.assign(),
		TopicID:     topicID,
		Title:       title,
		Description: description,
		Username:    username,
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.posts[p.ID] = p
	return p
}

func (s *fakeStore) addComment(postID int, content, username string) forum.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := forum.Comment{
		ID:        s.assign(),
		PostID:    postID,
		Content:   content,
		Username:  username,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.comments[c.ID] = c
	return c
}

func (s *fakeStore) handleLogin(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *fakeStore) handleListTopics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]forum.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		list = append(list, t)
	}
	hold := s.holdTopics
	blocked := s.topicsBlocked
	s.holdTopics = nil
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if hold != nil {
		blocked <- struct{}{}
		<-hold
	}
	writeJSON(w, list)
}

func (s *fakeStore) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	t := forum.Topic{ID: s.assign(), Name: body.Name}
	s.topics[t.ID] = t
	s.mu.Unlock()
	writeJSON(w, t)
}

func (s *fakeStore) handleRenameTopic(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	t, ok := s.topics[id]
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	t.Name = body.Name
	s.topics[id] = t
	s.mu.Unlock()
	writeJSON(w, t)
}

func (s *fakeStore) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	s.mu.Lock()
	if s.failDeletes[id] {
		s.mu.Unlock()
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	delete(s.topics, id)
	// The store cascades to posts and their comments.
	for pid, p := range s.posts {
		if p.TopicID != id {
			continue
		}
		delete(s.posts, pid)
		for cid, c := range s.comments {
			if c.PostID == pid {
				delete(s.comments, cid)
			}
		}
	}
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *fakeStore) handleListPosts(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("topic_id")
	s.mu.Lock()
	list := make([]forum.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter != "" && strconv.Itoa(p.TopicID) != filter {
			continue
		}
		list = append(list, p)
	}
	hold := s.holdPosts
	blocked := s.postsBlocked
	s.holdPosts = nil
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if hold != nil {
		blocked <- struct{}{}
		<-hold
	}
	writeJSON(w, list)
}

func (s *fakeStore) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	s.mu.Lock()
	p, ok := s.posts[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, p)
}

func (s *fakeStore) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var draft forum.PostDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	p := forum.Post{
		ID:          s.assign(),
		TopicID:     draft.TopicID,
		Title:       draft.Title,
		Description: draft.Description,
		Username:    draft.Username,
		CreatedAt:   time.Now().UTC(),
	}
	s.posts[p.ID] = p
	s.mu.Unlock()
	writeJSON(w, p)
}

func (s *fakeStore) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	var draft forum.PostDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	p.Title = draft.Title
	p.Description = draft.Description
	p.TopicID = draft.TopicID
	s.posts[id] = p
	s.mu.Unlock()
	writeJSON(w, p)
}

func (s *fakeStore) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	s.mu.Lock()
	if s.failDeletes[id] {
		s.mu.Unlock()
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *fakeStore) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID := pathInt(r, "id")
	s.mu.Lock()
	list := make([]forum.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			list = append(list, c)
		}
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, list)
}

func (s *fakeStore) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID := pathInt(r, "id")
	var draft forum.CommentDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	c := forum.Comment{
		ID:        s.assign(),
		PostID:    postID,
		Content:   draft.Content,
		Username:  draft.Username,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[c.ID] = c
	s.mu.Unlock()
	writeJSON(w, c)
}

func (s *fakeStore) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID := pathInt(r, "commentId")
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	c, ok := s.comments[commentID]
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	c.Content = body.Content
	s.comments[commentID] = c
	s.mu.Unlock()
	writeJSON(w, c)
}

func (s *fakeStore) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := pathInt(r, "commentId")
	s.mu.Lock()
	if s.failDeletes[commentID] {
		s.mu.Unlock()
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	delete(s.comments, commentID)
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func pathInt(r *http.Request, key string) int {
	id, _ := strconv.Atoi(r.PathValue(key))
	return id
}

// Shared test doubles.

type fakeNav struct {
	mu   sync.Mutex
	home int
}

func (n *fakeNav) GoHome() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.home++
}

func (n *fakeNav) homeCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.home
}

type fakeReload struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeReload) ReloadAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *fakeReload) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeConfirm struct {
	answer  bool
	prompts []string
}

func (c *fakeConfirm) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

// newTestSession returns a session already claiming username; an empty
// username means logged out.
func newTestSession(t *testing.T, store *fakeStore, username string) *session.Session {
	t.Helper()
	ctx := context.Background()
	slot := session.NewMemoryStore()
	if username != "" {
		if err := slot.Save(ctx, username); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	sess, err := session.New(ctx, slot, store.client())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func henryPolicy() *policy.Policy {
	return policy.New("Henry")
}

func intPtr(v int) *int {
	return &v
}
