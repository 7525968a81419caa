package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const messagesTable = "messages"

// SupabaseConfig configures the PostgREST message store.
type SupabaseConfig struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// SupabaseStore writes messages to the Supabase "messages" table through
// PostgREST.
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// supabaseRow is the column layout of the messages table.
type supabaseRow struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Morse     string    `json:"morse"`
	Encoding  string    `json:"encoding"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseStore{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

func (s *SupabaseStore) Save(ctx context.Context, msg Message) error {
	if msg.Room == "" {
		return ErrInvalidRoom
	}
	body, err := json.Marshal(supabaseRow(msg))
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.tableURL(nil), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	_, err = s.do(req)
	return err
}

func (s *SupabaseStore) Recent(ctx context.Context, room string, limit int) ([]Message, error) {
	if room == "" {
		return nil, ErrInvalidRoom
	}
	query := url.Values{}
	query.Set("select", "*")
	query.Set("room", "eq."+room)
	query.Set("order", "created_at.desc")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	req, err := s.newRequest(ctx, http.MethodGet, s.tableURL(query), nil)
	if err != nil {
		return nil, err
	}
	raw, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var rows []supabaseRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	// PostgREST returns newest first so the limit keeps the latest rows.
	out := make([]Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = Message(row)
	}
	return out, nil
}

func (s *SupabaseStore) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")
	req, err := s.newRequest(ctx, http.MethodGet, s.tableURL(query), nil)
	if err != nil {
		return err
	}
	_, err = s.do(req)
	return err
}

func (s *SupabaseStore) tableURL(query url.Values) string {
	u := s.baseURL + "/rest/v1/" + messagesTable
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (s *SupabaseStore) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *SupabaseStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read supabase response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
