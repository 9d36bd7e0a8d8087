package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"study-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup_MembersAndBackReferences(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "bob")

	g, err := e.groups.Create(CreateGroupInput{Name: "G", Creator: "alice", Subject: "数学", Members: []string{"bob"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, g.Members.Sorted())

	for _, name := range []string{"alice", "bob"} {
		u, _ := e.users.Get(name)
		assert.True(t, u.MyGroups.Has("G"), name)
	}

	_, err = e.groups.Create(CreateGroupInput{Name: "G", Creator: "bob"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateGroup_CreatorAlwaysMember(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	g, err := e.groups.Create(CreateGroupInput{Name: "solo", Creator: "alice", Members: []string{"alice", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, g.Members.Sorted())
}

func TestCreateGroup_StrictRejectsUnknownMembers(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	_, err := e.groups.Create(CreateGroupInput{Name: "G", Creator: "alice", Members: []string{"ghost"}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.groups.Get("G")
	assert.ErrorIs(t, err, ErrNotFound)
	u, _ := e.users.Get("alice")
	assert.False(t, u.MyGroups.Has("G"))
}

func TestCreateGroup_PermissiveKeepsUnknownMembers(t *testing.T) {
	e := newEnv(t, options{permissive: true})
	e.register(t, "alice")

	g, err := e.groups.Create(CreateGroupInput{Name: "G", Creator: "alice", Members: []string{"ghost"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "ghost"}, g.Members.Sorted())
	assert.False(t, e.users.Exists("ghost"))
}

func TestDeleteGroup(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "bob")
	_, err := e.groups.Create(CreateGroupInput{Name: "G", Creator: "alice", Members: []string{"bob"}})
	require.NoError(t, err)

	assert.ErrorIs(t, e.groups.Delete("G", "bob"), ErrNotCreator)
	assert.ErrorIs(t, e.groups.Delete("nope", "alice"), ErrNotFound)

	require.NoError(t, e.groups.Delete("G", "alice"))
	_, err = e.groups.Get("G")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, name := range []string{"alice", "bob"} {
		u, _ := e.users.Get(name)
		assert.False(t, u.MyGroups.Has("G"), name)
	}
}

func TestGroupPlansDiscussionsComments(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "bob")
	_, err := e.groups.Create(CreateGroupInput{Name: "G", Creator: "alice", Members: []string{"bob"}})
	require.NoError(t, err)

	require.NoError(t, e.groups.AddPlan("G", model.Plan{Title: "week 1", Duration: "1周", Goals: "g", Content: "c", Creator: "alice"}))
	require.NoError(t, e.groups.AddDiscussion("G", "一般讨论", "topic", "bob"))

	e.clock.Advance(time.Minute)
	require.NoError(t, e.groups.AddComment("G", 0, "alice", "first"))
	require.NoError(t, e.groups.AddComment("G", 0, "bob", "second"))

	assert.ErrorIs(t, e.groups.AddComment("G", 1, "alice", "x"), ErrNotFound)
	assert.ErrorIs(t, e.groups.AddComment("G", -1, "alice", "x"), ErrNotFound)
	assert.ErrorIs(t, e.groups.AddComment("missing", 0, "alice", "x"), ErrNotFound)
	assert.ErrorIs(t, e.groups.AddPlan("missing", model.Plan{}), ErrNotFound)
	assert.ErrorIs(t, e.groups.AddDiscussion("missing", "t", "c", "a"), ErrNotFound)

	g, err := e.groups.Get("G")
	require.NoError(t, err)
	require.Len(t, g.Plans, 1)
	assert.Equal(t, "week 1", g.Plans[0].Title)
	require.Len(t, g.Discussions, 1)
	require.Len(t, g.Discussions[0].Comments, 2)
	assert.Equal(t, "first", g.Discussions[0].Comments[0].Text)
	assert.Equal(t, "second", g.Discussions[0].Comments[1].Text)
	assert.Equal(t, e.clock.Now(), g.Discussions[0].Comments[1].Time)
}

func TestListForUserAndRequireMember(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "bob", "carol")
	_, err := e.groups.Create(CreateGroupInput{Name: "b-group", Creator: "alice", Members: []string{"bob"}})
	require.NoError(t, err)
	_, err = e.groups.Create(CreateGroupInput{Name: "a-group", Creator: "bob"})
	require.NoError(t, err)

	list := e.groups.ListForUser("bob")
	require.Len(t, list, 2)
	assert.Equal(t, "a-group", list[0].Name)
	assert.Equal(t, "b-group", list[1].Name)
	assert.Empty(t, e.groups.ListForUser("carol"))

	_, err = e.groups.RequireMember("b-group", "carol")
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = e.groups.RequireMember("b-group", "alice")
	assert.NoError(t, err)
}

func TestCreateGroup_ConcurrentCreatesAreAllKept(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.groups.Create(CreateGroupInput{Name: fmt.Sprintf("g%02d", i), Creator: "alice"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, e.groups.ListForUser("alice"), n)
	u, _ := e.users.Get("alice")
	assert.Len(t, u.MyGroups, n)

	restarted := buildEnv(e.store, nil, true)
	assert.Len(t, restarted.groups.ListForUser("alice"), n)
	u, _ = restarted.users.Get("alice")
	assert.Len(t, u.MyGroups, n)
}
