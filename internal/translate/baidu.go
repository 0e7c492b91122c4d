package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

const baiduEndpoint = "https://api.fanyi.baidu.com/api/trans/vip/translate"

// BaiduTranslator translates digest items one at a time through the Baidu
// machine-translation API. Requests are authenticated with the appid +
// query + salt MD5 signature scheme the API requires.
type BaiduTranslator struct {
	appID      string
	secret     string
	targetLang string
	endpoint   string
	client     *http.Client
	logger     *slog.Logger
	salt       func() int
}

// NewBaiduTranslator creates a Baidu-backed translator.
func NewBaiduTranslator(cfg config.TranslateConfig, logger *slog.Logger) *BaiduTranslator {
	lang := cfg.TargetLang
	if lang == "" {
		lang = "zh"
	}
	return &BaiduTranslator{
		appID:      cfg.BaiduAppID,
		secret:     cfg.BaiduSecret,
		targetLang: lang,
		endpoint:   baiduEndpoint,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "baidu_translator"),
		salt:       func() int { return 32768 + rand.Intn(32768) },
	}
}

// TranslateBatch translates the title and summary of every item. Keywords
// and URLs pass through untouched. Any single failure fails the batch.
func (t *BaiduTranslator) TranslateBatch(ctx context.Context, items []types.DigestItem) ([]types.DigestItem, error) {
	out := make([]types.DigestItem, len(items))
	for i, item := range items {
		title, err := t.Translate(ctx, item.Title)
		if err != nil {
			return nil, fmt.Errorf("translate title of %s: %w", item.URL, err)
		}
		summary, err := t.Translate(ctx, item.Summary)
		if err != nil {
			return nil, fmt.Errorf("translate summary of %s: %w", item.URL, err)
		}
		out[i] = item
		out[i].Title = title
		out[i].Summary = summary
	}
	t.logger.Info("batch translated", "items", len(out))
	return out, nil
}

// Translate translates a single text, auto-detecting the source language.
func (t *BaiduTranslator) Translate(ctx context.Context, q string) (string, error) {
	if strings.TrimSpace(q) == "" {
		return q, nil
	}

	salt := strconv.Itoa(t.salt())
	sum := md5.Sum([]byte(t.appID + q + salt + t.secret))
	sign := hex.EncodeToString(sum[:])

	params := url.Values{}
	params.Set("appid", t.appID)
	params.Set("q", q)
	params.Set("from", "auto")
	params.Set("to", t.targetLang)
	params.Set("salt", salt)
	params.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &types.ProviderError{Provider: "baidu", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var result struct {
		ErrorCode   string `json:"error_code"`
		ErrorMsg    string `json:"error_msg"`
		TransResult []struct {
			Src string `json:"src"`
			Dst string `json:"dst"`
		} `json:"trans_result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse baidu response: %w", err)
	}
	if result.ErrorCode != "" && result.ErrorCode != "52000" {
		return "", &types.ProviderError{
			Provider:    "baidu",
			Err:         fmt.Errorf("error %s: %s", result.ErrorCode, result.ErrorMsg),
			RateLimited: result.ErrorCode == "54003", // access frequency limited
		}
	}
	if len(result.TransResult) == 0 {
		return "", types.ErrNoContent
	}

	// Multi-line input comes back as one segment per line.
	parts := make([]string, len(result.TransResult))
	for i, seg := range result.TransResult {
		parts[i] = seg.Dst
	}
	return strings.Join(parts, "\n"), nil
}
