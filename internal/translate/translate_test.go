package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func digestBatch() []types.DigestItem {
	return []types.DigestItem{
		{Title: "A", Summary: "first", KeyWords: []string{"ai"}, URL: "https://example.com/a"},
		{Title: "B", Summary: "second", KeyWords: []string{"vc"}, URL: "https://example.com/b"},
	}
}

func TestLLMTranslateBatch(t *testing.T) {
	translated := []types.DigestItem{
		{Title: "甲", Summary: "第一", KeyWords: []string{"ai"}, URL: "https://example.com/a"},
		{Title: "乙", Summary: "第二", KeyWords: []string{"vc"}, URL: "https://example.com/b"},
	}
	payload, _ := json.Marshal(translated)
	g := &fakeGenerator{response: "好的：\n" + string(payload)}

	tr := NewLLMTranslator(g, testLogger)
	got, err := tr.TranslateBatch(context.Background(), digestBatch())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len(got) != 2 || got[0].Title != "甲" || got[1].Summary != "第二" {
		t.Errorf("unexpected batch: %+v", got)
	}
}

func TestLLMTranslateBatchAllOrNothing(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "抱歉，无法翻译"},
		{"truncated", `[{"title":"甲"`},
		{"wrong size", `[{"title":"甲","summary":"第一","key_words":["ai"],"url":"https://example.com/a"}]`},
	}
	for _, tc := range cases {
		g := &fakeGenerator{response: tc.response}
		tr := NewLLMTranslator(g, testLogger)
		if _, err := tr.TranslateBatch(context.Background(), digestBatch()); err == nil {
			t.Errorf("%s: expected error, got none", tc.name)
		}
	}
}

func TestLLMTranslateBatchPropagatesProviderError(t *testing.T) {
	g := &fakeGenerator{err: &types.ProviderError{Provider: "openai", StatusCode: 429, RateLimited: true, Err: errors.New("quota")}}
	tr := NewLLMTranslator(g, testLogger)
	if _, err := tr.TranslateBatch(context.Background(), digestBatch()); !types.IsRateLimit(err) {
		t.Errorf("expected rate-limit error, got %v", err)
	}
}

func TestLLMTranslateEmptyBatch(t *testing.T) {
	tr := NewLLMTranslator(&fakeGenerator{}, testLogger)
	got, err := tr.TranslateBatch(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("empty batch should be a no-op, got %v, %v", got, err)
	}
}

func TestNopTranslator(t *testing.T) {
	batch := digestBatch()
	got, err := NopTranslator{}.TranslateBatch(context.Background(), batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(batch) || got[0].Title != "A" {
		t.Errorf("nop translator must pass batch through, got %+v", got)
	}
}

func TestBaiduTranslateSigning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sum := md5.Sum([]byte(q.Get("appid") + q.Get("q") + q.Get("salt") + "secret"))
		if q.Get("sign") != hex.EncodeToString(sum[:]) {
			t.Errorf("bad signature for q=%q", q.Get("q"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"trans_result": []map[string]string{{"src": q.Get("q"), "dst": "翻译:" + q.Get("q")}},
		})
	}))
	defer srv.Close()

	tr := NewBaiduTranslator(config.TranslateConfig{
		BaiduAppID:  "appid",
		BaiduSecret: "secret",
		TargetLang:  "zh",
	}, testLogger)
	tr.endpoint = srv.URL

	got, err := tr.TranslateBatch(context.Background(), digestBatch())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got[0].Title != "翻译:A" || got[1].Summary != "翻译:second" {
		t.Errorf("unexpected batch: %+v", got)
	}
	if got[0].URL != "https://example.com/a" || len(got[0].KeyWords) != 1 {
		t.Error("keywords and URLs must pass through untouched")
	}
}

func TestBaiduTranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error_code": "54003", "error_msg": "frequency limited"})
	}))
	defer srv.Close()

	tr := NewBaiduTranslator(config.TranslateConfig{BaiduAppID: "a", BaiduSecret: "s"}, testLogger)
	tr.endpoint = srv.URL

	_, err := tr.Translate(context.Background(), "hello")
	if !types.IsRateLimit(err) {
		t.Errorf("error 54003 should classify as rate limit, got %v", err)
	}
}
