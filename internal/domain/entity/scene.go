package entity

import (
	"fmt"
	"strings"
)

// SceneRecord is the stage 1 artifact for one detected scene that survived
// the minimum-duration filter. SceneID is the detector's original index,
// not the position in the output list: dropped scenes leave gaps and the
// remaining ids are never renumbered.
type SceneRecord struct {
	SceneID      int     `json:"scene_id"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Duration     float64 `json:"duration"`
	AudioPath    string  `json:"audio_path"`
	FramePath    string  `json:"frame_path"`
	SubtitleText string  `json:"subtitle_text"`
}

// EnrichedSceneRecord is the stage 2 generation of a SceneRecord. It is a
// new record, not a mutation: the stage 1 artifact stays valid on disk.
type EnrichedSceneRecord struct {
	SceneID         int     `json:"scene_id"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	Duration        float64 `json:"duration"`
	ASRText         string  `json:"asr_text"`
	VisionCaption   string  `json:"vision_caption"`
	CombinedContext string  `json:"combined_context"`
}

// NewSceneRecord builds a stage 1 record from detector output. Duration is
// always derived from the time range, never supplied independently.
func NewSceneRecord(sceneID int, startTime, endTime float64) SceneRecord {
	return SceneRecord{
		SceneID:   sceneID,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime - startTime,
	}
}

// Enrich produces the stage 2 generation of a scene. Time and identity
// fields are copied unchanged; caption and transcript are fused into
// CombinedContext by joining the non-empty parts as sentences.
func (s SceneRecord) Enrich(asrText, visionCaption string) EnrichedSceneRecord {
	var parts []string
	if visionCaption != "" {
		parts = append(parts, visionCaption)
	}
	if asrText != "" {
		parts = append(parts, asrText)
	}
	combined := ""
	if len(parts) > 0 {
		combined = strings.Join(parts, "。") + "。"
	}
	return EnrichedSceneRecord{
		SceneID:         s.SceneID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Duration:        s.Duration,
		ASRText:         asrText,
		VisionCaption:   visionCaption,
		CombinedContext: combined,
	}
}

// Validate checks the per-record time invariants.
func (s SceneRecord) Validate() error {
	if s.SceneID < 0 {
		return fmt.Errorf("scene %d: negative scene_id", s.SceneID)
	}
	if s.EndTime <= s.StartTime {
		return fmt.Errorf("scene %d: end_time %.3f <= start_time %.3f", s.SceneID, s.EndTime, s.StartTime)
	}
	return nil
}

// ValidateSceneOrder checks that scene_id is strictly increasing across a
// checkpoint. Gaps are allowed; they mark scenes dropped by the duration
// filter.
func ValidateSceneOrder(scenes []SceneRecord) error {
	for i, s := range scenes {
		if err := s.Validate(); err != nil {
			return err
		}
		if i > 0 && s.SceneID <= scenes[i-1].SceneID {
			return fmt.Errorf("scene_id not strictly increasing: %d after %d", s.SceneID, scenes[i-1].SceneID)
		}
	}
	return nil
}

// ValidateEnrichedOrder is ValidateSceneOrder for the stage 2 generation.
func ValidateEnrichedOrder(scenes []EnrichedSceneRecord) error {
	for i, s := range scenes {
		if s.SceneID < 0 {
			return fmt.Errorf("scene %d: negative scene_id", s.SceneID)
		}
		if s.EndTime <= s.StartTime {
			return fmt.Errorf("scene %d: end_time %.3f <= start_time %.3f", s.SceneID, s.EndTime, s.StartTime)
		}
		if i > 0 && s.SceneID <= scenes[i-1].SceneID {
			return fmt.Errorf("scene_id not strictly increasing: %d after %d", s.SceneID, scenes[i-1].SceneID)
		}
	}
	return nil
}
