// Package ocr talks to the external OCR.space text-recognition service.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const DefaultEndpoint = "https://api.ocr.space/parse/image"

// defaultConfidence is reported when the provider returns no word overlay.
const defaultConfidence = 70

var (
	ErrRequestFailed = errors.New("ocr request failed")
	ErrNoText        = errors.New("no text recognized")
)

// BBox is a word bounding box in pixel coordinates.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Word is one recognized word with its confidence in [0,100].
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// Result is the parsed recognition outcome for one image.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

// provider response shape, assumed stable.
type apiResponse struct {
	ParsedResults []struct {
		ParsedText  string `json:"ParsedText"`
		TextOverlay struct {
			Lines []struct {
				Words []struct {
					WordText        string  `json:"WordText"`
					WordsConfidence float64 `json:"WordsConfidence"`
					Left            float64 `json:"Left"`
					Top             float64 `json:"Top"`
					Width           float64 `json:"Width"`
					Height          float64 `json:"Height"`
				} `json:"Words"`
			} `json:"Lines"`
		} `json:"TextOverlay"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
}

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(endpoint, apiKey string, log zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log.With().Str("component", "ocr").Logger(),
	}
}

// Recognize submits image bytes for text extraction and returns the full
// recognized text plus word-level overlay data. There is no retry; the
// caller decides whether to re-trigger extraction.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Result, error) {
	body, contentType, err := buildForm(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("ocr provider unreachable")
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Msg("ocr provider returned non-200")
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrRequestFailed, err)
	}
	if len(parsed.ParsedResults) == 0 {
		return nil, ErrNoText
	}

	return buildResult(parsed), nil
}

func buildForm(image []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	encoded := base64.StdEncoding.EncodeToString(image)
	fields := map[string]string{
		"base64Image":       "data:image/jpeg;base64," + encoded,
		"language":          "eng",
		"isOverlayRequired": "true",
		"filetype":          "jpg",
		"detectOrientation": "true",
		"OCREngine":         "2",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func buildResult(parsed apiResponse) *Result {
	first := parsed.ParsedResults[0]

	result := &Result{
		Text:       first.ParsedText,
		Confidence: defaultConfidence,
	}

	for _, line := range first.TextOverlay.Lines {
		for _, word := range line.Words {
			result.Words = append(result.Words, Word{
				Text:       word.WordText,
				Confidence: clamp(word.WordsConfidence * 100),
				BBox: BBox{
					X0: word.Left,
					Y0: word.Top,
					X1: word.Left + word.Width,
					Y1: word.Top + word.Height,
				},
			})
		}
	}

	if len(first.TextOverlay.Lines) > 0 && len(first.TextOverlay.Lines[0].Words) > 0 {
		result.Confidence = clamp(first.TextOverlay.Lines[0].Words[0].WordsConfidence * 100)
	}
	return result
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
