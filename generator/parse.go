package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

type poemPayload struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
	Error *string  `json:"error,omitempty"`
}

// ParsePoem 은 모델 응답을 GeneratedPoem 으로 변환한다.
// 지시를 어기고 ```json 블록으로 감싸는 경우가 있어 펜스를 벗겨 내고,
// JSON 이 아예 없으면 첫 줄을 제목, 나머지를 본문으로 취급한다.
func ParsePoem(raw string) (*GeneratedPoem, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var p poemPayload
		if err := json.Unmarshal([]byte(text[start:end+1]), &p); err == nil {
			if p.Error != nil && strings.TrimSpace(*p.Error) != "" {
				return nil, fmt.Errorf("%w: %s", ErrRefused, *p.Error)
			}
			return finish(p.Title, p.Body, p.Tags)
		}
	}
	return parsePlain(text)
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// 언어 표기(json 등) 제거
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parsePlain(text string) (*GeneratedPoem, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return nil, ErrEmptyResponse
	}
	title := strings.Trim(strings.TrimSpace(lines[i]), "#*\"'« »")
	body := strings.Join(lines[i+1:], "\n")
	return finish(title, body, nil)
}

func finish(title, body string, tags []string) (*GeneratedPoem, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyResponse
	}
	if title == "" {
		title = firstLine(body)
	}

	seen := make(map[string]struct{}, len(tags))
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		clean = append(clean, t)
	}
	return &GeneratedPoem{Title: title, Body: body, Tags: clean}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
