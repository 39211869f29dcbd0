// internal/app/system/rooms/hms.go
package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HMSConfig configures the 100ms client. Template ids map room kinds to
// the templates configured on the 100ms dashboard.
type HMSConfig struct {
	BaseURL   string // e.g. https://api.100ms.live
	AccessKey string
	Secret    string
	Templates map[string]string // room kind -> template id
}

// HMSClient implements Provisioner against the 100ms management API.
// Management calls authenticate with a short-lived HS256 token minted
// per request.
type HMSClient struct {
	cfg  HMSConfig
	http *http.Client
	log  *zap.Logger
}

// NewHMSClient builds a client with a sane request timeout.
func NewHMSClient(cfg HMSConfig, logger *zap.Logger) *HMSClient {
	return &HMSClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logger,
	}
}

// managementToken mints the management-scope JWT the 100ms API expects.
func (c *HMSClient) managementToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"access_key": c.cfg.AccessKey,
		"type":       "management",
		"version":    2,
		"iat":        now.Unix(),
		"exp":        now.Add(24 * time.Hour).Unix(),
		"jti":        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.Secret))
}

// JoinToken mints an app-scope credential for one user in one room.
func (c *HMSClient) JoinToken(roomID, userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"access_key": c.cfg.AccessKey,
		"type":       "app",
		"version":    2,
		"room_id":    roomID,
		"user_id":    userID,
		"role":       role,
		"iat":        now.Unix(),
		"exp":        now.Add(24 * time.Hour).Unix(),
		"jti":        uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign join token: %w", err)
	}
	return tok, nil
}

// CreateRoom provisions a room from the template for kind.
func (c *HMSClient) CreateRoom(ctx context.Context, kind string) (string, error) {
	templateID, ok := c.cfg.Templates[kind]
	if !ok {
		return "", fmt.Errorf("no template configured for room kind %q", kind)
	}

	body := map[string]string{
		"name":        fmt.Sprintf("room-%s-%d", kind, time.Now().UnixMilli()),
		"description": "Room for " + kind + " template",
		"template_id": templateID,
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v2/rooms", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: create room returned no id", ErrUpstream)
	}
	return resp.ID, nil
}

// StartRecording begins a 720p recording of the room.
func (c *HMSClient) StartRecording(ctx context.Context, roomID string) error {
	body := map[string]any{
		"resolution": map[string]int{"width": 1280, "height": 720},
	}
	return c.post(ctx, "/v2/recordings/room/"+roomID+"/start", body, nil)
}

// StopRecording stops any active recording of the room.
func (c *HMSClient) StopRecording(ctx context.Context, roomID string) error {
	return c.post(ctx, "/v2/recordings/room/"+roomID+"/stop", struct{}{}, nil)
}

func (c *HMSClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	token, err := c.managementToken()
	if err != nil {
		return fmt.Errorf("sign management token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("provisioning call failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
		}
	}
	return nil
}
