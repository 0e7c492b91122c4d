package digest

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// digestTemplate renders the daily digest: a compact anchor-linked list of
// every item first, then the full per-item sections.
const digestTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<title>Tech News Daily Update</title>
</head>
<body style="font-family: 'PingFang SC', 'Microsoft YaHei', sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f5f6fa;">
<div style="background: linear-gradient(135deg, #74b9ff, #0984e3); color: white; padding: 20px; border-radius: 15px 15px 0 0;">
<h1 style="text-align: center; margin: 0; font-size: 1.8em;">📰 今日科技要闻</h1>
<div style="text-align: right; font-size: 0.9em; margin-top: 10px; opacity: 0.9;">{{.Date}}</div>
</div>
<div style="background-color: white; padding: 25px; border-radius: 0 0 15px 15px; margin-bottom: 30px;">
{{- range .Items}}
<div style="padding: 12px 15px; margin-bottom: 15px; border-radius: 8px; display: flex; align-items: baseline;">
<span style="flex: 0 0 40px; font-weight: bold; color: #0984e3;">#{{printf "%02d" .Index}}</span>
<span style="flex: 1;">
<a href="#item-{{.Index}}" style="color: #2c3e50; text-decoration: none;">{{.Title}}</a>
<div style="margin-top: 4px; color: #7f8c8d; font-size: 0.85em;">{{.TopKeywords}}</div>
</span>
</div>
{{- end}}
</div>
<div style="text-align: center; margin: 40px 0;">
<div style="color: #2c3e50; font-weight: bold; margin-bottom: 10px;">详细内容</div>
<div style="height: 2px; background: linear-gradient(to right, transparent, #3498db, transparent);"></div>
</div>
<div style="background-color: white; padding: 25px; border-radius: 15px;">
{{- range .Items}}
<div id="item-{{.Index}}" style="margin-bottom: 30px; padding: 20px; border-radius: 10px;">
<h3 style="color: #2c3e50; font-size: 1.2em; margin: 0 0 15px 0; padding-bottom: 10px; border-bottom: 1px solid #eee;">📰 {{.Title}}</h3>
<div style="color: #34495e; margin: 15px 0; line-height: 1.6;">📝 {{.Summary}}</div>
<div style="display: flex; justify-content: space-between; align-items: center; margin-top: 15px; font-size: 0.9em;">
<div style="color: #7f8c8d;">🏷️ {{.AllKeywords}}</div>
<a href="{{.URL}}" style="color: #0984e3; text-decoration: none; font-weight: 500;" target="_blank">阅读原文 →</a>
</div>
</div>
{{- end}}
</div>
<div style="text-align: center; margin-top: 30px; color: #666; font-size: 12px;">
<p>此邮件由自动系统发送，请勿直接回复</p>
</div>
</body>
</html>`

var digestTmpl = template.Must(template.New("digest").Parse(digestTemplate))

type renderItem struct {
	Index       int
	Title       string
	Summary     string
	TopKeywords string
	AllKeywords string
	URL         string
}

// Render produces the digest HTML for a batch of items.
func Render(items []types.DigestItem, now time.Time) (string, error) {
	view := struct {
		Date  string
		Items []renderItem
	}{
		Date: now.Format("2006-01-02 15:04:05"),
	}
	for i, item := range items {
		top := item.KeyWords
		if len(top) > 3 {
			top = top[:3]
		}
		view.Items = append(view.Items, renderItem{
			Index:       i + 1,
			Title:       item.Title,
			Summary:     item.Summary,
			TopKeywords: strings.Join(top, ", "),
			AllKeywords: strings.Join(item.KeyWords, ", "),
			URL:         item.URL,
		})
	}

	var b strings.Builder
	if err := digestTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

// Subject returns the digest subject line for a given day.
func Subject(now time.Time) string {
	return "Tech News Daily Update - " + now.Format("2006-01-02")
}
