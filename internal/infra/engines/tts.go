package engines

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
)

// TTSClient renders one utterance to waveform samples with a fixed voice
// and requested output sample rate.
type TTSClient struct {
	c          *Client
	voice      string
	sampleRate int
}

func NewTTSClient(cfg ClientConfig, voice string, sampleRate int, logger *zap.Logger) *TTSClient {
	return &TTSClient{c: NewClient(cfg, logger), voice: voice, sampleRate: sampleRate}
}

func (t *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, int, error) {
	req := struct {
		Text       string `json:"text"`
		Voice      string `json:"voice"`
		SampleRate int    `json:"sample_rate"`
	}{Text: text, Voice: t.voice, SampleRate: t.sampleRate}

	var resp struct {
		SampleRate int    `json:"sample_rate"`
		Audio      string `json:"audio"` // base64 WAV
	}
	if err := t.c.postJSON(ctx, "/synthesize", nil, req, &resp); err != nil {
		return nil, 0, fmt.Errorf("synthesize: %w", err)
	}

	wav, err := base64.StdEncoding.DecodeString(resp.Audio)
	if err != nil {
		return nil, 0, fmt.Errorf("synthesize: decode audio: %w", err)
	}
	if len(wav) == 0 {
		return nil, 0, fmt.Errorf("synthesize: empty waveform")
	}
	return wav, resp.SampleRate, nil
}
