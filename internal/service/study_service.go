package service

import (
	"context"
	"fmt"
	"strings"

	"study-assistant/internal/model"
	"study-assistant/pkg/errlog"
	"study-assistant/pkg/llm"
	"study-assistant/pkg/logger"

	"go.uber.org/zap"
)

// recentLimit 学习总结中展示的最近记录数
const recentLimit = 10

// Answer 生成结果；生成失败时 Failed 为 true，Content 为带错误说明的文本
type Answer struct {
	Content string `json:"content"`
	Failed  bool   `json:"failed"`
}

// StudySummary 学习记录统计
type StudySummary struct {
	Total     int                 `json:"total"`
	BySubject map[string]int      `json:"by_subject"`
	ByMode    map[string]int      `json:"by_mode"`
	Recent    []model.StudyRecord `json:"recent"`
}

// StudyService 个人学习与小组内容生成
type StudyService struct {
	gen    llm.Generator
	users  *UserService
	groups *GroupService
	errs   *errlog.Logger
}

func NewStudyService(gen llm.Generator, users *UserService, groups *GroupService, errs *errlog.Logger) *StudyService {
	return &StudyService{gen: gen, users: users, groups: groups, errs: errs}
}

// Explain 概念学习
func (s *StudyService) Explain(ctx context.Context, user, subject, topic, level string) (Answer, error) {
	if strings.TrimSpace(topic) == "" {
		return Answer{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if !s.users.Exists(user) {
		return Answer{}, fmt.Errorf("%w: user %q", ErrNotFound, user)
	}

	prompt := fmt.Sprintf(`请以%s难度讲解%s科目中的“%s”。
请包含以下内容：
1. 核心概念说明
2. 主要原理与规律
3. 生活中的例子
4. 相关例题`, level, subject, topic)

	ans := s.generate(ctx, user, prompt)
	s.record(user, model.StudyRecord{
		Subject: subject,
		Mode:    model.ModeConcept,
		Topic:   topic,
		Level:   level,
	})
	return ans, nil
}

// Solve 题目解答
func (s *StudyService) Solve(ctx context.Context, user, subject, problem string, stepByStep bool) (Answer, error) {
	if strings.TrimSpace(problem) == "" {
		return Answer{}, fmt.Errorf("%w: problem is required", ErrInvalidInput)
	}
	if !s.users.Exists(user) {
		return Answer{}, fmt.Errorf("%w: user %q", ErrNotFound, user)
	}

	style := "简要"
	if stepByStep {
		style = "分步骤详细"
	}
	prompt := fmt.Sprintf("请%s解答下面这道%s题：\n%s", style, subject, problem)

	ans := s.generate(ctx, user, prompt)
	s.record(user, model.StudyRecord{
		Subject: subject,
		Mode:    model.ModeProblem,
		Problem: problem,
	})
	return ans, nil
}

// Ask 提问
func (s *StudyService) Ask(ctx context.Context, user, subject, question string, withExamples bool) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if !s.users.Exists(user) {
		return Answer{}, fmt.Errorf("%w: user %q", ErrNotFound, user)
	}

	examples := ""
	if withExamples {
		examples = "结合例子"
	}
	prompt := fmt.Sprintf("这是一个关于%s的问题：%s\n请%s详细回答。", subject, question, examples)

	ans := s.generate(ctx, user, prompt)
	s.record(user, model.StudyRecord{
		Subject:  subject,
		Mode:     model.ModeQuestion,
		Question: question,
	})
	return ans, nil
}

// SimilarProblems 生成两道难度相近的题目及解答，不记录学习记录
func (s *StudyService) SimilarProblems(ctx context.Context, user, subject, problem string) (Answer, error) {
	if strings.TrimSpace(problem) == "" {
		return Answer{}, fmt.Errorf("%w: problem is required", ErrInvalidInput)
	}
	prompt := fmt.Sprintf("请参照下面这道%s题，出 2 道难度相近的题目，并给出每道题的解答：\n%s", subject, problem)
	return s.generate(ctx, user, prompt), nil
}

// GeneratePlan 为小组生成学习计划，成功时追加到小组
func (s *StudyService) GeneratePlan(ctx context.Context, group, user, title, duration, goals string) (Answer, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(goals) == "" {
		return Answer{}, fmt.Errorf("%w: title and goals are required", ErrInvalidInput)
	}
	g, err := s.groups.RequireMember(group, user)
	if err != nil {
		return Answer{}, err
	}

	prompt := fmt.Sprintf(`请按以下条件制定学习计划：
- 科目：%s
- 标题：%s
- 周期：%s
- 目标：%s`, g.Subject, title, duration, goals)

	ans := s.generate(ctx, user, prompt)
	if ans.Failed {
		return ans, nil
	}
	err = s.groups.AddPlan(group, model.Plan{
		Title:    title,
		Duration: duration,
		Goals:    goals,
		Content:  ans.Content,
		Creator:  user,
	})
	return ans, err
}

// GenerateDiscussion 为小组生成讨论主题，成功时追加到小组
func (s *StudyService) GenerateDiscussion(ctx context.Context, group, user, kind string) (Answer, error) {
	g, err := s.groups.RequireMember(group, user)
	if err != nil {
		return Answer{}, err
	}

	prompt := fmt.Sprintf(`请为%s科目生成一个%s主题。
请包含以下内容：
1. 讨论主题
2. 主要论点
3. 讨论指引`, g.Subject, kind)

	ans := s.generate(ctx, user, prompt)
	if ans.Failed {
		return ans, nil
	}
	err = s.groups.AddDiscussion(group, kind, ans.Content, user)
	return ans, err
}

// Summary 按科目、按模式统计，并给出最近的记录（新的在前）
func (s *StudyService) Summary(user string) (*StudySummary, error) {
	u, err := s.users.Get(user)
	if err != nil {
		return nil, err
	}

	sum := &StudySummary{
		Total:     len(u.StudyRecords),
		BySubject: map[string]int{},
		ByMode:    map[string]int{},
		Recent:    []model.StudyRecord{},
	}
	for _, r := range u.StudyRecords {
		sum.BySubject[r.Subject]++
		sum.ByMode[r.Mode]++
	}
	for i := len(u.StudyRecords) - 1; i >= 0 && len(sum.Recent) < recentLimit; i-- {
		sum.Recent = append(sum.Recent, u.StudyRecords[i])
	}
	return sum, nil
}

// record 追加学习记录；失败只记日志，已生成的内容照常返回
func (s *StudyService) record(user string, rec model.StudyRecord) {
	if err := s.users.AddStudyRecord(user, rec); err != nil {
		logger.Warn("追加学习记录失败", zap.String("username", user), zap.String("mode", rec.Mode), zap.Error(err))
	}
}

// generate 调用生成服务，失败时记录错误日志并返回带错误说明的文本
func (s *StudyService) generate(ctx context.Context, user, prompt string) Answer {
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.errs.Log(errlog.KindGeneration, err.Error(), user)
		return Answer{Content: fmt.Sprintf("生成失败：%v", err), Failed: true}
	}
	return Answer{Content: text}
}
