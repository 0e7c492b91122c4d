package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/ai"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

const translatePrompt = `你是一个英文翻译成中文的专家，请将以下JSON格式的内容翻译成中文。要求：
1. 如果原文就是中文，则保持内容不变
2. 只翻译内容，不要修改JSON结构，保持JSON格式不变
3. 确保输出是有效的JSON格式
4. 中文要听起来自然流利
5. 直接返回翻译后的JSON数组，不要添加任何额外的解释文字

需要翻译的内容：
`

// LLMTranslator translates a digest batch with a single generation request.
type LLMTranslator struct {
	llm    ai.Generator
	logger *slog.Logger
}

// NewLLMTranslator creates an LLM-backed translator.
func NewLLMTranslator(llm ai.Generator, logger *slog.Logger) *LLMTranslator {
	return &LLMTranslator{
		llm:    llm,
		logger: logger.With("component", "llm_translator"),
	}
}

// TranslateBatch sends the whole batch as one JSON-encoded request and
// validates that the response is a JSON array with the same shape. Any
// parse or validation failure is an error; there is no partial fallback.
func (t *LLMTranslator) TranslateBatch(ctx context.Context, items []types.DigestItem) ([]types.DigestItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	raw, err := t.llm.Generate(ctx, translatePrompt+string(payload))
	if err != nil {
		t.logger.Error("translation failed", "error", err)
		return nil, err
	}

	var translated []types.DigestItem
	if err := json.Unmarshal([]byte(ai.ExtractJSONArray(raw)), &translated); err != nil {
		t.logger.Error("translated payload is not valid JSON", "error", err)
		return nil, fmt.Errorf("parse translated payload: %w", err)
	}
	if len(translated) != len(items) {
		t.logger.Error("translated batch size mismatch", "want", len(items), "got", len(translated))
		return nil, fmt.Errorf("translated batch has %d items, want %d", len(translated), len(items))
	}

	t.logger.Info("batch translated", "items", len(translated))
	return translated, nil
}
