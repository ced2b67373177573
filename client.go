package ttsmaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultBaseURL is the TTSMaker API endpoint used when no override is given.
	DefaultBaseURL = "https://api.ttsmaker.cn/v1"

	// DefaultToken is the public demo token the service accepts for evaluation use.
	DefaultToken = "ttsmaker_demo_token"

	// MaxTextLength is the service's per-request text limit, in characters.
	MaxTextLength = 3000

	defaultTimeout = 30 * time.Second
)

// Audio formats accepted by the synthesis endpoint.
const (
	FormatMP3  = "mp3"
	FormatOGG  = "ogg"
	FormatAAC  = "aac"
	FormatOpus = "opus"
)

// Client calls the TTSMaker synthesis API. Its configuration is fixed at
// construction, so a single Client is safe for sequential or concurrent reuse.
type Client struct {
	baseURL  string
	token    string
	timeout  time.Duration
	httpc    *http.Client
	defaults orderParams
}

// orderParams holds the tuning parameters of one synthesis request.
type orderParams struct {
	format  string
	speed   float64
	volume  float64
	pauseMS int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the default service endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithToken sets the developer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets the HTTP client used for synthesis calls. The client's
// own timeout settings apply as-is.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTimeout sets the request timeout of the built-in HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDefaultFormat sets the audio format used when a call does not override it.
func WithDefaultFormat(format string) Option {
	return func(c *Client) { c.defaults.format = format }
}

// WithDefaultSpeed sets the speech speed used when a call does not override it.
func WithDefaultSpeed(speed float64) Option {
	return func(c *Client) { c.defaults.speed = speed }
}

// WithDefaultVolume sets the volume gain used when a call does not override it.
func WithDefaultVolume(volume float64) Option {
	return func(c *Client) { c.defaults.volume = volume }
}

// WithDefaultParagraphPause sets the paragraph pause in milliseconds used when
// a call does not override it.
func WithDefaultParagraphPause(ms int) Option {
	return func(c *Client) { c.defaults.pauseMS = ms }
}

// NewClient creates a Client. With no options it talks to the public TTSMaker
// endpoint using the demo token.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   DefaultToken,
		timeout: defaultTimeout,
		defaults: orderParams{
			format: FormatMP3,
			speed:  1.0,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ValidationError{Field: "base_url", Reason: fmt.Sprintf("not a valid HTTP(S) URL: %q", c.baseURL)}
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	if err := c.defaults.validate(); err != nil {
		return nil, err
	}

	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// OrderOption overrides one tuning parameter for a single synthesis request.
type OrderOption func(*orderParams)

// WithFormat selects the audio format for this order (mp3, ogg, aac or opus).
func WithFormat(format string) OrderOption {
	return func(p *orderParams) { p.format = format }
}

// WithSpeed selects the speech speed for this order, from 0.5 to 2.0.
func WithSpeed(speed float64) OrderOption {
	return func(p *orderParams) { p.speed = speed }
}

// WithVolume selects the volume gain for this order, from 0 to 10.
func WithVolume(volume float64) OrderOption {
	return func(p *orderParams) { p.volume = volume }
}

// WithParagraphPause inserts a pause between paragraphs, 500 to 5000
// milliseconds. Zero disables pause insertion.
func WithParagraphPause(ms int) OrderOption {
	return func(p *orderParams) { p.pauseMS = ms }
}

func (p *orderParams) validate() error {
	switch p.format {
	case FormatMP3, FormatOGG, FormatAAC, FormatOpus:
	default:
		return &ValidationError{Field: "audio_format", Reason: fmt.Sprintf("unsupported format %q", p.format)}
	}
	if p.speed < 0.5 || p.speed > 2.0 {
		return &ValidationError{Field: "audio_speed", Reason: fmt.Sprintf("%g outside range 0.5-2.0", p.speed)}
	}
	if p.volume < 0 || p.volume > 10 {
		return &ValidationError{Field: "audio_volume", Reason: fmt.Sprintf("%g outside range 0-10", p.volume)}
	}
	if p.pauseMS != 0 && (p.pauseMS < 500 || p.pauseMS > 5000) {
		return &ValidationError{Field: "text_paragraph_pause_time", Reason: fmt.Sprintf("%d outside range 500-5000 ms", p.pauseMS)}
	}
	return nil
}

// createOrderRequest is the wire format of the create-tts-order endpoint.
type createOrderRequest struct {
	Token                  string  `json:"token"`
	Text                   string  `json:"text"`
	VoiceID                int     `json:"voice_id"`
	AudioFormat            string  `json:"audio_format"`
	AudioSpeed             float64 `json:"audio_speed"`
	AudioVolume            float64 `json:"audio_volume"`
	TextParagraphPauseTime int     `json:"text_paragraph_pause_time"`
}

// apiStatus is the status envelope shared by all JSON responses.
type apiStatus struct {
	Status       string `json:"status"`
	ErrorCode    int    `json:"error_code"`
	ErrorDetails string `json:"error_details"`
	ErrorMsg     string `json:"error"`
	Msg          string `json:"msg"`
}

func (s *apiStatus) ok() bool { return s.Status == "success" }

// message returns the most specific error text the service provided.
func (s *apiStatus) message(fallback string) string {
	for _, m := range []string{s.ErrorDetails, s.ErrorMsg, s.Msg} {
		if m != "" {
			return m
		}
	}
	return fallback
}

type createOrderResponse struct {
	apiStatus
	AudioFileURL  string `json:"audio_file_url"`
	AudioFileType string `json:"audio_file_type"`
}

// CreateTTSOrder submits one synthesis request and returns the resulting
// Order. Parameters are validated before any network call; the request itself
// is a single synchronous HTTP round trip.
func (c *Client) CreateTTSOrder(ctx context.Context, text string, voiceID int, opts ...OrderOption) (*Order, error) {
	if text == "" {
		return nil, &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return nil, &ValidationError{Field: "text", Reason: fmt.Sprintf("%d characters exceeds limit of %d", n, MaxTextLength)}
	}
	if voiceID <= 0 {
		return nil, &ValidationError{Field: "voice_id", Reason: fmt.Sprintf("%d is not a positive voice ID", voiceID)}
	}

	params := c.defaults
	for _, opt := range opts {
		opt(&params)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(createOrderRequest{
		Token:                  c.token,
		Text:                   text,
		VoiceID:                voiceID,
		AudioFormat:            params.format,
		AudioSpeed:             params.speed,
		AudioVolume:            params.volume,
		TextParagraphPauseTime: params.pauseMS,
	})
	if err != nil {
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-tts-order", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "create-tts-order", Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "create-tts-order", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "create-tts-order", Err: err}
	}

	// The service answers with either raw audio bytes or a JSON order.
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if isSuccess(resp.StatusCode) && strings.HasPrefix(mediaType, "audio/") {
		format := formatFromMediaType(mediaType)
		if format == "" {
			format = params.format
		}
		return &Order{audio: data, format: format}, nil
	}

	var raw map[string]any
	var r createOrderResponse
	if err := json.Unmarshal(data, &r); err != nil || json.Unmarshal(data, &raw) != nil {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response: %s", trimBody(data)),
		}
	}

	if !isSuccess(resp.StatusCode) || !r.ok() {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Code:       r.ErrorCode,
			Message:    r.message(trimBody(data)),
		}
	}

	if r.AudioFileURL == "" {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    "response carries neither audio data nor an audio_file_url",
		}
	}

	format := r.AudioFileType
	if format == "" {
		format = params.format
	}
	return &Order{url: r.AudioFileURL, format: format, raw: raw}, nil
}

// apiResponse is implemented by every decoded JSON response via its embedded
// apiStatus.
type apiResponse interface {
	statusEnvelope() *apiStatus
}

// getJSON performs one GET against the given endpoint and decodes the JSON
// body into out. The raw decoded body is returned alongside for metadata use.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out apiResponse) (map[string]any, error) {
	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, out); err != nil || json.Unmarshal(data, &raw) != nil {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response: %s", trimBody(data)),
		}
	}

	status := out.statusEnvelope()
	if !isSuccess(resp.StatusCode) || !status.ok() {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Code:       status.ErrorCode,
			Message:    status.message(trimBody(data)),
		}
	}

	return raw, nil
}

func (s *apiStatus) statusEnvelope() *apiStatus { return s }

func isSuccess(code int) bool { return code >= 200 && code < 300 }

// formatFromMediaType maps an audio media type to a file extension.
func formatFromMediaType(mediaType string) string {
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return FormatMP3
	case "audio/ogg":
		return FormatOGG
	case "audio/aac":
		return FormatAAC
	case "audio/opus":
		return FormatOpus
	}
	return ""
}

// trimBody shortens a response body for inclusion in error messages.
func trimBody(data []byte) string {
	const max = 256
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
