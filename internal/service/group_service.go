package service

import (
	"fmt"
	"strings"
	"time"

	"study-assistant/internal/model"
	"study-assistant/internal/repository"
	"study-assistant/pkg/store"
)

// GroupService 学习小组
// 涉及 users 的操作统一先锁 groups 再锁 users
type GroupService struct {
	groups *repository.GroupRepository
	users  *repository.UserRepository
	strict bool
	now    func() time.Time
}

func NewGroupService(groups *repository.GroupRepository, users *repository.UserRepository, strict bool) *GroupService {
	return &GroupService{groups: groups, users: users, strict: strict, now: time.Now}
}

func (s *GroupService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateGroupInput 创建小组参数
type CreateGroupInput struct {
	Name        string
	Creator     string
	Subject     string
	Members     []string
	Description string
}

// Create 创建小组，成员为 initial ∪ {creator}，并写入每个成员的 my_groups
func (s *GroupService) Create(in CreateGroupInput) (*model.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Creator == "" {
		return nil, fmt.Errorf("%w: group name and creator are required", ErrInvalidInput)
	}

	members := model.NewStringSet(in.Creator)
	for _, m := range in.Members {
		if m = strings.TrimSpace(m); m != "" {
			members.Add(m)
		}
	}

	var out *model.Group
	err := store.Update2(s.groups.Collection(), s.users.Collection(), func(groups map[string]*model.Group, users map[string]*model.User) error {
		if _, ok := groups[name]; ok {
			return fmt.Errorf("%w: group %q", ErrAlreadyExists, name)
		}
		if err := checkMembers(users, members, s.strict); err != nil {
			return err
		}

		g := &model.Group{
			Name:        name,
			Creator:     in.Creator,
			Subject:     in.Subject,
			Members:     members,
			Description: in.Description,
			CreatedAt:   s.now(),
			Plans:       []model.Plan{},
			Discussions: []model.Discussion{},
		}
		groups[name] = g

		for m := range members {
			if u, ok := users[m]; ok {
				u.EnsureSets()
				u.MyGroups.Add(name)
			}
		}
		out = g.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete 仅创建者可删除；删除后从所有成员的 my_groups 中移除
func (s *GroupService) Delete(name, requester string) error {
	return store.Update2(s.groups.Collection(), s.users.Collection(), func(groups map[string]*model.Group, users map[string]*model.User) error {
		g, ok := groups[name]
		if !ok {
			return fmt.Errorf("%w: group %q", ErrNotFound, name)
		}
		if g.Creator != requester {
			return ErrNotCreator
		}

		delete(groups, name)
		for m := range g.Members {
			if u, ok := users[m]; ok && u.MyGroups != nil {
				u.MyGroups.Remove(name)
			}
		}
		// 成员集合之外的残留引用也一并清理
		if u, ok := users[requester]; ok && u.MyGroups != nil {
			u.MyGroups.Remove(name)
		}
		return nil
	})
}

// AddPlan 追加学习计划
func (s *GroupService) AddPlan(group string, plan model.Plan) error {
	return s.groups.Update(group, func(g *model.Group) error {
		if g == nil {
			return fmt.Errorf("%w: group %q", ErrNotFound, group)
		}
		plan.CreatedAt = s.now()
		g.Plans = append(g.Plans, plan)
		return nil
	})
}

// AddDiscussion 追加讨论，评论列表为空
func (s *GroupService) AddDiscussion(group, kind, content, author string) error {
	return s.groups.Update(group, func(g *model.Group) error {
		if g == nil {
			return fmt.Errorf("%w: group %q", ErrNotFound, group)
		}
		g.Discussions = append(g.Discussions, model.Discussion{
			Type:      kind,
			Content:   content,
			Creator:   author,
			CreatedAt: s.now(),
			Comments:  []model.Comment{},
		})
		return nil
	})
}

// AddComment 在指定讨论下追加评论
func (s *GroupService) AddComment(group string, index int, author, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: comment must not be empty", ErrInvalidInput)
	}
	return s.groups.Update(group, func(g *model.Group) error {
		if g == nil {
			return fmt.Errorf("%w: group %q", ErrNotFound, group)
		}
		if index < 0 || index >= len(g.Discussions) {
			return fmt.Errorf("%w: discussion %d", ErrNotFound, index)
		}
		d := &g.Discussions[index]
		d.Comments = append(d.Comments, model.Comment{User: author, Text: text, Time: s.now()})
		return nil
	})
}

// Get 获取小组副本
func (s *GroupService) Get(name string) (*model.Group, error) {
	g, ok := s.groups.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: group %q", ErrNotFound, name)
	}
	return g, nil
}

// RequireMember 获取小组并确认用户是成员
func (s *GroupService) RequireMember(name, username string) (*model.Group, error) {
	g, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if !g.Members.Has(username) {
		return nil, ErrNotMember
	}
	return g, nil
}

// ListForUser 用户所在的小组
func (s *GroupService) ListForUser(username string) []*model.Group {
	return s.groups.ListByMember(username)
}

// checkMembers 严格模式下成员必须是已注册用户
func checkMembers(users map[string]*model.User, members model.StringSet, strict bool) error {
	if !strict {
		return nil
	}
	var missing []string
	for _, m := range members.Sorted() {
		if _, ok := users[m]; !ok {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: users %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return nil
}
