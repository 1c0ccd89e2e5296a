package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptOutlineV1         PromptID = "outline_v1"
	PromptChapterDraftV1    PromptID = "chapter_draft_v1"
	PromptChapterRefineV1   PromptID = "chapter_refine_v1"
	PromptComplianceCheckV1 PromptID = "compliance_check_v1"
	PromptKeywordsV1        PromptID = "keywords_v1"
	PromptChapterImageV1    PromptID = "chapter_image_v1"
	PromptCoverV1           PromptID = "cover_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	msgs := make([]schema.MessagesTemplate, 0, 2)
	if systemPath != "" {
		system, err := readEmbeddedText(systemPath)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))

	tpl := einoprompt.FromMessages(schema.FString, msgs...)
	r.cache[id] = tpl
	return tpl, nil
}

// Render 格式化模板为消息序列
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) ([]*schema.Message, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, vars)
}

// RenderText 格式化模板并拼接为单段文本，用于图像生成等非对话场景
func (r *Registry) RenderText(ctx context.Context, id PromptID, vars map[string]any) (string, error) {
	msgs, err := r.Render(ctx, id, vars)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg != nil && msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptOutlineV1:
		return "templates/outline_v1.system.txt", "templates/outline_v1.user.txt", nil
	case PromptChapterDraftV1:
		return "templates/chapter_draft_v1.system.txt", "templates/chapter_draft_v1.user.txt", nil
	case PromptChapterRefineV1:
		return "templates/chapter_refine_v1.system.txt", "templates/chapter_refine_v1.user.txt", nil
	case PromptComplianceCheckV1:
		return "templates/compliance_check_v1.system.txt", "templates/compliance_check_v1.user.txt", nil
	case PromptKeywordsV1:
		return "templates/keywords_v1.system.txt", "templates/keywords_v1.user.txt", nil
	case PromptChapterImageV1:
		return "", "templates/chapter_image_v1.user.txt", nil
	case PromptCoverV1:
		return "", "templates/cover_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
