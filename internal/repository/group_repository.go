package repository

import (
	"sort"

	"study-assistant/internal/model"
	"study-assistant/pkg/store"
)

// GroupRepository groups.json
type GroupRepository struct {
	col *store.Collection[model.Group]
}

func NewGroupRepository(s *store.Store) *GroupRepository {
	return &GroupRepository{col: store.NewCollection[model.Group](s, GroupsDocument)}
}

func (r *GroupRepository) Collection() *store.Collection[model.Group] {
	return r.col
}

// Get 按组名获取（副本）
func (r *GroupRepository) Get(name string) (*model.Group, bool) {
	var g *model.Group
	r.col.View(func(items map[string]*model.Group) {
		if found, ok := items[name]; ok {
			g = found.Clone()
		}
	})
	return g, g != nil
}

// ListByMember 用户所在的全部小组，按组名排序
func (r *GroupRepository) ListByMember(username string) []*model.Group {
	var out []*model.Group
	r.col.View(func(items map[string]*model.Group) {
		for _, g := range items {
			if g.Members.Has(username) {
				out = append(out, g.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Update 修改单个小组，不存在时 fn 收到 nil
func (r *GroupRepository) Update(name string, fn func(g *model.Group) error) error {
	return r.col.Update(func(items map[string]*model.Group) error {
		g := items[name]
		if g != nil {
			g.EnsureSets()
		}
		return fn(g)
	})
}
