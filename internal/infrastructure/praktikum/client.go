package praktikum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"HomeworkBot/internal/config"
	"HomeworkBot/internal/domain"
	"HomeworkBot/internal/ports"
)

const (
	statusesMethod = "homework_statuses/"
	opFetch        = "praktikum fetch"

	// errorBodyLimit caps how much of a failed response is read for the summary.
	errorBodyLimit = 4096
	summaryLimit   = 200
)

// Client queries the homework review API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

var _ ports.ReviewService = (*Client)(nil)

// NewClient builds a reusable client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg config.PraktikumConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return &Client{
		endpoint: base + statusesMethod,
		token:    cfg.Token,
		http:     httpClient,
	}
}

// Fetch returns the homework statuses changed since the given watermark.
func (c *Client) Fetch(ctx context.Context, since domain.Watermark) (domain.StatusUpdate, error) {
	if !since.Valid() {
		return domain.StatusUpdate{}, domain.Errorf(domain.KindInvalidWatermark, opFetch, "watermark %d is not set", since)
	}

	reqURL, err := buildStatusesURL(c.endpoint, since)
	if err != nil {
		return domain.StatusUpdate{}, domain.NewError(domain.KindTransport, opFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.StatusUpdate{}, domain.NewError(domain.KindTransport, opFetch, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.StatusUpdate{}, domain.NewError(domain.KindTransport, opFetch, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		summary := summarizeErrorBody(resp.Header.Get("Content-Type"), body)
		if summary == "" {
			return domain.StatusUpdate{}, domain.Errorf(domain.KindTransport, opFetch, "unexpected status %s", resp.Status)
		}
		return domain.StatusUpdate{}, domain.Errorf(domain.KindTransport, opFetch, "unexpected status %s: %s", resp.Status, summary)
	}

	return decodeStatuses(resp.Body)
}

// statusesResponse mirrors the homework_statuses body; a nil Homeworks means the key was absent or null.
type statusesResponse struct {
	Homeworks   *[]domain.Submission `json:"homeworks"`
	CurrentDate *domain.Watermark    `json:"current_date"`
}

func decodeStatuses(body io.Reader) (domain.StatusUpdate, error) {
	dec := json.NewDecoder(body)

	var payload statusesResponse
	if err := dec.Decode(&payload); err != nil {
		return domain.StatusUpdate{}, domain.NewError(domain.KindDecode, opFetch, fmt.Errorf("decode response: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.StatusUpdate{}, domain.Errorf(domain.KindDecode, opFetch, "decode response: unexpected data after JSON object")
	}
	if payload.Homeworks == nil {
		return domain.StatusUpdate{}, domain.Errorf(domain.KindDecode, opFetch, "decode response: missing homeworks list")
	}

	return domain.StatusUpdate{Homeworks: *payload.Homeworks, CurrentDate: payload.CurrentDate}, nil
}

func buildStatusesURL(endpoint string, since domain.Watermark) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}

	query := parsed.Query()
	query.Set("from_date", strconv.FormatInt(int64(since), 10))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// summarizeErrorBody turns an error response into one short line: the page
// title for HTML, code/message for the API's JSON errors, trimmed text otherwise.
func summarizeErrorBody(contentType string, body []byte) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch {
	case mediaType == "text/html" || looksLikeHTML(body):
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return truncate(title)
			}
			if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
				return truncate(h1)
			}
		}
	case mediaType == "application/json":
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != "" || apiErr.Message != "") {
			return truncate(strings.TrimSpace(strings.Join(nonEmpty(apiErr.Code, apiErr.Message), ": ")))
		}
	}

	return truncate(strings.Join(strings.Fields(string(body)), " "))
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 64)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= summaryLimit {
		return s
	}
	return string(r[:summaryLimit]) + "..."
}
