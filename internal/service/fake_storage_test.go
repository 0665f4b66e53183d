package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"threadmerge/internal/events"
	"threadmerge/internal/models"
	"threadmerge/internal/storage"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// forumData is the committed state of the fake database.
type forumData struct {
	threads map[int64]*models.Thread
	posts   map[int64]*models.Post
}

func (d *forumData) clone() *forumData {
	c := &forumData{
		threads: make(map[int64]*models.Thread, len(d.threads)),
		posts:   make(map[int64]*models.Post, len(d.posts)),
	}
	for id, t := range d.threads {
		cp := *t
		cp.Posts = nil
		c.threads[id] = &cp
	}
	for id, p := range d.posts {
		cp := *p
		c.posts[id] = &cp
	}
	return c
}

func (d *forumData) postsOf(threadID int64) []*models.Post {
	var out []*models.Post
	for _, p := range d.posts {
		if p.Thread == threadID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// fakeMergeStorage is an in-memory storage.MergeStorage. Transactions work on a
// copy of the data that replaces the committed state only when fn succeeds,
// and the (thread, number) uniqueness rule is checked on every single update.
type fakeMergeStorage struct {
	mu    sync.Mutex
	data  *forumData
	calls map[string]int
	fail  map[string]func(call int) error

	getErr     map[int64]error
	txStarted  int
	txCommited int
}

func newFakeMergeStorage() *fakeMergeStorage {
	return &fakeMergeStorage{
		data:   &forumData{threads: map[int64]*models.Thread{}, posts: map[int64]*models.Post{}},
		calls:  map[string]int{},
		fail:   map[string]func(int) error{},
		getErr: map[int64]error{},
	}
}

func (f *fakeMergeStorage) addThread(id int64, author string) {
	f.data.threads[id] = &models.Thread{ID: id, Title: fmt.Sprintf("thread %d", id), Author: author}
}

func (f *fakeMergeStorage) addPost(id, threadID int64, number, minutes int, author string) {
	f.data.posts[id] = &models.Post{
		ID:      id,
		Thread:  threadID,
		Number:  number,
		Author:  author,
		Kind:    models.PostKindComment,
		Created: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
	if t := f.data.threads[threadID]; t != nil && number > t.PostNumberIndex {
		t.PostNumberIndex = number
	}
}

// failOn makes the nth call (1-based) of op fail; n == 0 fails every call.
func (f *fakeMergeStorage) failOn(op string, n int, err error) {
	f.fail[op] = func(call int) error {
		if n == 0 || call == n {
			return err
		}
		return nil
	}
}

func (f *fakeMergeStorage) hit(op string) error {
	f.calls[op]++
	if fn, ok := f.fail[op]; ok {
		return fn(f.calls[op])
	}
	return nil
}

func (f *fakeMergeStorage) snapshot() *forumData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.clone()
}

func (f *fakeMergeStorage) GetThreadWithPosts(_ context.Context, id int64) (*models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("GetThreadWithPosts"); err != nil {
		return nil, err
	}
	if err, ok := f.getErr[id]; ok {
		return nil, err
	}
	t, ok := f.data.threads[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	cp.Posts = f.data.postsOf(id)
	return &cp, nil
}

func (f *fakeMergeStorage) CountThreadPosts(_ context.Context, id int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("CountThreadPosts"); err != nil {
		return 0, err
	}
	return len(f.data.postsOf(id)), nil
}

func (f *fakeMergeStorage) WithinTx(_ context.Context, fn func(tx storage.MergeTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txStarted++

	work := f.data.clone()
	if err := fn(&fakeMergeTx{store: f, data: work}); err != nil {
		return err
	}
	if err := f.hit("Commit"); err != nil {
		return err
	}
	f.data = work
	f.txCommited++
	return nil
}

type fakeMergeTx struct {
	store *fakeMergeStorage
	data  *forumData
}

func (tx *fakeMergeTx) LockThread(_ context.Context, id int64) error {
	if err := tx.store.hit("LockThread"); err != nil {
		return err
	}
	if _, ok := tx.data.threads[id]; !ok {
		return models.ErrNotFound
	}
	return nil
}

func (tx *fakeMergeTx) SavePosts(_ context.Context, thread *models.Thread) error {
	if err := tx.store.hit("SavePosts"); err != nil {
		return err
	}
	if _, ok := tx.data.threads[thread.ID]; !ok {
		return models.ErrNotFound
	}

	posts := make([]*models.Post, len(thread.Posts))
	copy(posts, thread.Posts)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Number > posts[j].Number })

	for _, p := range posts {
		row, ok := tx.data.posts[p.ID]
		if !ok {
			return models.ErrPostNotFound
		}
		for _, other := range tx.data.posts {
			if other.ID != p.ID && other.Thread == thread.ID && other.Number == p.Number {
				return fmt.Errorf("duplicate key (thread_id, number)=(%d, %d)", thread.ID, p.Number)
			}
		}
		row.Number = p.Number
		row.Thread = thread.ID
	}
	tx.data.threads[thread.ID].PostNumberIndex = thread.PostNumberIndex
	return nil
}

func (tx *fakeMergeTx) SaveAggregates(_ context.Context, thread *models.Thread) error {
	if err := tx.store.hit("SaveAggregates"); err != nil {
		return err
	}
	row, ok := tx.data.threads[thread.ID]
	if !ok {
		return models.ErrNotFound
	}
	row.PostNumberIndex = thread.PostNumberIndex
	row.ApplyAggregates(models.ThreadAggregates{
		CommentCount:     thread.CommentCount,
		ParticipantCount: thread.ParticipantCount,
		FirstPostID:      thread.FirstPostID,
		LastPostID:       thread.LastPostID,
		LastPostNumber:   thread.LastPostNumber,
		LastPostedAt:     thread.LastPostedAt,
		LastPostedUser:   thread.LastPostedUser,
	})
	return nil
}

func (tx *fakeMergeTx) DeleteThread(_ context.Context, id int64) error {
	if err := tx.store.hit("DeleteThread"); err != nil {
		return err
	}
	if _, ok := tx.data.threads[id]; !ok {
		return models.ErrNotFound
	}
	for _, p := range tx.data.posts {
		if p.Thread == id {
			return fmt.Errorf("thread %d still owns posts", id)
		}
	}
	delete(tx.data.threads, id)
	return nil
}

type recordingNotifier struct {
	events []events.ThreadMerged
	err    error
}

func (n *recordingNotifier) DispatchThreadMerged(_ context.Context, event events.ThreadMerged) error {
	n.events = append(n.events, event)
	return n.err
}
