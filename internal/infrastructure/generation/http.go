// Package generation 提供图像与语音生成服务的适配器
package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 2048

// providerHTTPError 服务商非 2xx 响应
type providerHTTPError struct {
	StatusCode int
	Body       string
}

func (e *providerHTTPError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(body))
}

// statusOf 提取 HTTP 状态码，非 HTTP 错误返回 0
func statusOf(err error) int {
	var he *providerHTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

type httpDoer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newHTTPDoer(baseURL, apiKey string, timeout time.Duration) httpDoer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return httpDoer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// postJSON 发送 JSON 请求，返回原始响应体和 Content-Type
func (d httpDoer) postJSON(ctx context.Context, path string, body any) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, &buf)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return d.do(req)
}

// download 下载生成结果（签名 URL 不附带鉴权头）
func (d httpDoer) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	return d.do(req)
}

func (d httpDoer) do(req *http.Request) ([]byte, string, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &providerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, mediaType(resp.Header.Get("Content-Type")), nil
}

// imagesRequest OpenAI 兼容的图像生成请求
type imagesRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // b64_json|url
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generateImage 调用 /v1/images/generations，优先 b64_json，缺失时下载 url
func (d httpDoer) generateImage(ctx context.Context, req imagesRequest) ([]byte, string, error) {
	raw, _, err := d.postJSON(ctx, "/v1/images/generations", req)
	if err != nil {
		return nil, "", err
	}
	var resp imagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("decode image response: %w", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return nil, "", errors.New(resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return nil, "", errors.New("no image returned")
	}

	item := resp.Data[0]
	if b64 := strings.TrimSpace(item.B64JSON); b64 != "" {
		img, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, "", fmt.Errorf("decode image base64: %w", err)
		}
		if len(img) == 0 {
			return nil, "", errors.New("empty image payload")
		}
		return img, sniffImageType(img), nil
	}
	if u := strings.TrimSpace(item.URL); u != "" {
		img, ct, err := d.download(ctx, u)
		if err != nil {
			return nil, "", fmt.Errorf("download generated image: %w", err)
		}
		if !strings.HasPrefix(ct, "image/") {
			ct = sniffImageType(img)
		}
		return img, ct, nil
	}
	return nil, "", errors.New("image response missing b64_json and url")
}

func mediaType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
}

// sniffImageType 按内容识别图像类型，无法识别时按 png 处理
func sniffImageType(b []byte) string {
	ct := mediaType(http.DetectContentType(b))
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/png"
}
