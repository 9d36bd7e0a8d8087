package model

import "time"

// Group 学习小组（groups.json 中以组名为键）
// Members 始终包含 Creator
type Group struct {
	Name        string       `json:"name"`
	Creator     string       `json:"creator"`
	Subject     string       `json:"subject"`
	Members     StringSet    `json:"members"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	Plans       []Plan       `json:"plans"`
	Discussions []Discussion `json:"discussions"`
}

// Plan 学习计划，只追加
type Plan struct {
	Title     string    `json:"title"`
	Duration  string    `json:"duration"`
	Goals     string    `json:"goals"`
	Content   string    `json:"content"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
}

// Discussion 讨论主题，评论只追加
type Discussion struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
	Comments  []Comment `json:"comments"`
}

// Comment 讨论评论
type Comment struct {
	User string    `json:"user"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// EnsureSets 补齐旧文档中缺失的成员集合
func (g *Group) EnsureSets() {
	if g.Members == nil {
		g.Members = NewStringSet()
	}
}

// Clone 深拷贝
func (g *Group) Clone() *Group {
	c := *g
	c.Members = g.Members.Clone()
	c.Plans = append([]Plan(nil), g.Plans...)
	c.Discussions = make([]Discussion, len(g.Discussions))
	for i, d := range g.Discussions {
		d.Comments = append([]Comment(nil), d.Comments...)
		c.Discussions[i] = d
	}
	return &c
}
