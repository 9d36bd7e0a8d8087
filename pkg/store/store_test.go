package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type note struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	return New(backend), dir
}

func newSQLStore(t *testing.T) (*Store, *SQLBackend) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	backend, err := NewSQLBackend(db)
	require.NoError(t, err)
	return New(backend), backend
}

func TestStore_RoundTrip(t *testing.T) {
	s, dir := newFileStore(t)

	in := map[string]note{
		"a": {Title: "first", Tags: []string{"x", "y"}, Count: 1},
		"b": {Title: "second", Count: 2},
	}
	require.True(t, s.Save("users", in))
	assert.FileExists(t, filepath.Join(dir, "users.json"))

	out := map[string]note{}
	require.True(t, s.Load("users", &out))
	assert.Equal(t, in, out)
}

func TestStore_LoadMissingKeepsDefault(t *testing.T) {
	s, _ := newFileStore(t)

	out := note{Title: "default"}
	assert.False(t, s.Load("nothing", &out))
	assert.Equal(t, "default", out.Title)
}

func TestStore_LoadCorruptKeepsDefault(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	out := note{Title: "default", Count: 7}
	assert.False(t, s.Load("broken", &out))
	assert.Equal(t, note{Title: "default", Count: 7}, out)
}

func TestStore_LoadRejectsNonPointer(t *testing.T) {
	s, _ := newFileStore(t)
	require.True(t, s.Save("doc", note{Title: "t"}))

	var out note
	assert.False(t, s.Load("doc", out))
}

type failingBackend struct{}

func (failingBackend) Read(string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingBackend) Write(string, []byte) error  { return errors.New("disk gone") }
func (failingBackend) Delete(string) error         { return errors.New("disk gone") }
func (failingBackend) Names() ([]string, error)    { return nil, errors.New("disk gone") }

func TestStore_FailuresAreSwallowed(t *testing.T) {
	s := New(failingBackend{})
	var failed []string
	s.OnFailure(func(document string, err error) {
		failed = append(failed, document)
	})

	out := note{Title: "default"}
	assert.False(t, s.Load("doc", &out))
	assert.Equal(t, "default", out.Title)
	assert.False(t, s.Save("doc", out))
	assert.False(t, s.Delete("doc"))
	assert.Equal(t, []string{"doc", "doc", "doc"}, failed)
}

func TestFileBackend_OverwriteAndNames(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, b.Write("chats", []byte(`{"v":1}`)))
	require.NoError(t, b.Write("chats", []byte(`{"v":2}`)))
	require.NoError(t, b.Write("groups", []byte(`{}`)))

	data, err := b.Read("chats")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))

	names, err := b.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"chats", "groups"}, names)

	require.NoError(t, b.Delete("chats"))
	require.NoError(t, b.Delete("chats"))
	_, err = b.Read("chats")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestSQLBackend_Overwrite(t *testing.T) {
	s, backend := newSQLStore(t)

	require.True(t, s.Save("users", map[string]note{"a": {Title: "one"}}))
	require.True(t, s.Save("users", map[string]note{"a": {Title: "two"}}))

	var row documentRow
	require.NoError(t, backend.db.Where("name = ?", "users").First(&row).Error)
	assert.Equal(t, int64(2), row.Version)

	out := map[string]note{}
	require.True(t, s.Load("users", &out))
	assert.Equal(t, "two", out["a"].Title)

	names, err := backend.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)

	require.True(t, s.Delete("users"))
	_, err = backend.Read("users")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestCollection_LoadAndReload(t *testing.T) {
	s, _ := newFileStore(t)
	require.True(t, s.Save("notes", map[string]*note{"a": {Title: "a"}}))

	c := NewCollection[note](s, "notes")
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Exists("a"))

	require.True(t, s.Save("notes", map[string]*note{"a": {Title: "a"}, "b": {Title: "b"}}))
	assert.Equal(t, 1, c.Len())

	c.Reload()
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Exists("b"))
}

func TestCollection_UpdateErrorPersistsNothing(t *testing.T) {
	s, _ := newFileStore(t)
	c := NewCollection[note](s, "notes")

	err := c.Update(func(items map[string]*note) error {
		return errors.New("rejected")
	})
	require.Error(t, err)

	out := map[string]*note{}
	assert.False(t, s.Load("notes", &out), "rejected update must not write the document")

	require.NoError(t, c.Update(func(items map[string]*note) error {
		items["a"] = &note{Title: "a"}
		return nil
	}))
	require.True(t, s.Load("notes", &out))
	assert.Equal(t, "a", out["a"].Title)
}

func TestCollection_GetReturnsCopy(t *testing.T) {
	s, _ := newFileStore(t)
	c := NewCollection[note](s, "notes")
	require.NoError(t, c.Update(func(items map[string]*note) error {
		items["a"] = &note{Title: "a", Tags: []string{"x"}}
		return nil
	}))

	got, ok := c.Get("a")
	require.True(t, ok)
	got.Tags[0] = "changed"
	got.Title = "changed"

	again, _ := c.Get("a")
	assert.Equal(t, "a", again.Title)
	assert.Equal(t, []string{"x"}, again.Tags)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCollection_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s, _ := newFileStore(t)
	c := NewCollection[note](s, "notes")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Update(func(items map[string]*note) error {
				items[fmt.Sprintf("n%02d", i)] = &note{Count: i}
				return nil
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, c.Len())

	reloaded := NewCollection[note](s, "notes")
	assert.Equal(t, workers, reloaded.Len())
}

func TestUpdate2_PersistsBoth(t *testing.T) {
	s, _ := newFileStore(t)
	a := NewCollection[note](s, "left")
	b := NewCollection[note](s, "right")

	require.NoError(t, Update2(a, b, func(ai, bi map[string]*note) error {
		ai["x"] = &note{Title: "left"}
		bi["x"] = &note{Title: "right"}
		return nil
	}))

	err := Update2(a, b, func(ai, bi map[string]*note) error {
		return errors.New("no")
	})
	require.Error(t, err)

	assert.Equal(t, 1, NewCollection[note](s, "left").Len())
	assert.Equal(t, 1, NewCollection[note](s, "right").Len())
}

func TestDocument_DefaultUpdateAndCopy(t *testing.T) {
	s, _ := newFileStore(t)
	d := NewDocument(s, "single", func() note { return note{Title: "default"} })
	assert.Equal(t, "default", d.Get().Title)

	got, err := d.Update(func(v *note) error {
		v.Count++
		v.Tags = append(v.Tags, "t")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)

	got.Tags[0] = "mutated"
	assert.Equal(t, []string{"t"}, d.Get().Tags)

	_, err = d.Update(func(v *note) error {
		v.Count = 100
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Equal(t, 1, d.Get().Count)

	reopened := NewDocument(s, "single", func() note { return note{} })
	assert.Equal(t, 1, reopened.Get().Count)

	assert.True(t, d.Set(note{Title: "reset"}))
	assert.Equal(t, "reset", NewDocument(s, "single", func() note { return note{} }).Get().Title)
}
