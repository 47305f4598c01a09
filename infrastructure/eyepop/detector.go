// Package eyepop implements the object detection port against an
// EyePop.ai worker endpoint.
package eyepop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"homegraph/domain/detection"

	"go.uber.org/zap"
)

// Config configures the detector client.
type Config struct {
	APIURL              string // control plane, e.g. https://api.eyepop.ai
	PopID               string
	SecretKey           string
	ConfidenceThreshold float64
	Timeout             time.Duration
}

// Detector implements ports.ObjectDetector. It authenticates against
// the control plane, resolves the pop's worker endpoint and posts
// images for synchronous prediction.
type Detector struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	workerURL   string
}

// NewDetector creates a new detector client.
func NewDetector(cfg Config, logger *zap.Logger) (*Detector, error) {
	if cfg.PopID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("detector pop ID and secret key are required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.eyepop.ai"
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Detector{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// prediction is one frame's worth of detector output. Coordinates are
// in source pixels; Detect normalizes them against the source size.
type prediction struct {
	SourceWidth  float64 `json:"source_width"`
	SourceHeight float64 `json:"source_height"`
	Objects      []struct {
		ClassLabel string  `json:"classLabel"`
		Confidence float64 `json:"confidence"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
	} `json:"objects"`
}

// Detect posts the image for synchronous prediction and returns raw
// detections with normalized boxes, filtered to the confidence
// threshold. Overlap consolidation is the caller's concern.
func (d *Detector) Detect(ctx context.Context, image []byte) ([]detection.Detection, error) {
	workerURL, token, err := d.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/pops/%s/source?mode=queue&processing=sync", workerURL, d.cfg.PopID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("detector request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var pred prediction
	if err := json.Unmarshal(payload, &pred); err != nil {
		// The endpoint may wrap single-image results in a list.
		var preds []prediction
		if err2 := json.Unmarshal(payload, &preds); err2 != nil || len(preds) == 0 {
			return nil, fmt.Errorf("failed to decode prediction: %w", err)
		}
		pred = preds[0]
	}

	if pred.SourceWidth <= 0 || pred.SourceHeight <= 0 {
		return nil, fmt.Errorf("prediction missing source dimensions")
	}

	detections := make([]detection.Detection, 0, len(pred.Objects))
	for _, obj := range pred.Objects {
		if obj.Confidence < d.cfg.ConfidenceThreshold {
			continue
		}
		detections = append(detections, detection.Detection{
			ClassLabel: obj.ClassLabel,
			Confidence: obj.Confidence,
			BoundingBox: detection.BoundingBox{
				X:      obj.X / pred.SourceWidth,
				Y:      obj.Y / pred.SourceHeight,
				Width:  obj.Width / pred.SourceWidth,
				Height: obj.Height / pred.SourceHeight,
			},
			Quantity: 1,
		})
	}

	d.logger.Debug("Detection completed",
		zap.Int("raw", len(pred.Objects)),
		zap.Int("aboveThreshold", len(detections)),
	)

	return detections, nil
}

// ensureSession refreshes the access token and worker endpoint when
// missing or near expiry.
func (d *Detector) ensureSession(ctx context.Context) (workerURL, token string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.accessToken != "" && d.workerURL != "" && time.Now().Before(d.tokenExpiry.Add(-time.Minute)) {
		return d.workerURL, d.accessToken, nil
	}

	body, _ := json.Marshal(map[string]string{"secret_key": d.cfg.SecretKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.cfg.APIURL+"/authentication/token", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("detector authentication failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("detector authentication failed: %s", resp.Status)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", "", fmt.Errorf("failed to decode token response: %w", err)
	}

	d.accessToken = auth.AccessToken
	d.tokenExpiry = time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second)

	if err := d.resolveWorker(ctx); err != nil {
		return "", "", err
	}

	return d.workerURL, d.accessToken, nil
}

// resolveWorker asks the control plane for the pop's worker base URL,
// auto-starting the pop when idle. Caller holds the mutex.
func (d *Detector) resolveWorker(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/pops/%s/config?auto_start=true", d.cfg.APIURL, d.cfg.PopID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.accessToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to resolve worker endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to resolve worker endpoint: %s", resp.Status)
	}

	var cfg struct {
		BaseURL string `json:"base_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return fmt.Errorf("failed to decode pop config: %w", err)
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("pop config missing worker base URL")
	}

	d.workerURL = cfg.BaseURL
	d.logger.Debug("Resolved detector worker endpoint", zap.String("workerURL", cfg.BaseURL))
	return nil
}
