package model

import "time"

// User 用户文档（users.json 中以用户名为键）
// 说明：密码仅存储摘要（Password），不存储明文
// LastActive 为空表示从未登录
type User struct {
	Password     string        `json:"password"`
	Email        string        `json:"email"`
	Nickname     string        `json:"nickname"`
	ProfileImage *string       `json:"profile_image"`
	CreatedAt    time.Time     `json:"created_at"`
	StudyRecords []StudyRecord `json:"study_records"`
	MyGroups     StringSet     `json:"my_groups"`
	MyChats      StringSet     `json:"my_chats"`
	LastActive   *time.Time    `json:"last_active"`
}

// 学习模式
const (
	ModeConcept  = "concept"
	ModeProblem  = "problem"
	ModeQuestion = "question"
)

// StudyRecord 学习记录，只追加
type StudyRecord struct {
	Subject  string    `json:"subject"`
	Mode     string    `json:"mode"`
	Topic    string    `json:"topic,omitempty"`
	Problem  string    `json:"problem,omitempty"`
	Question string    `json:"question,omitempty"`
	Level    string    `json:"level,omitempty"`
	Date     time.Time `json:"date"`
}

// EnsureSets 补齐旧文档中缺失的集合字段
func (u *User) EnsureSets() {
	if u.MyGroups == nil {
		u.MyGroups = NewStringSet()
	}
	if u.MyChats == nil {
		u.MyChats = NewStringSet()
	}
}

// Clone 深拷贝，供只读调用方使用
func (u *User) Clone() *User {
	c := *u
	c.StudyRecords = append([]StudyRecord(nil), u.StudyRecords...)
	c.MyGroups = u.MyGroups.Clone()
	c.MyChats = u.MyChats.Clone()
	if u.ProfileImage != nil {
		img := *u.ProfileImage
		c.ProfileImage = &img
	}
	if u.LastActive != nil {
		t := *u.LastActive
		c.LastActive = &t
	}
	return &c
}
