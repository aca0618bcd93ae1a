package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
)

// CurrentVersion is written into every document this package encodes
const CurrentVersion = 2

// Legacy difficulty names and the level each one maps to
var legacyDifficulty = map[string]int{
	"easy":   1,
	"medium": 4,
	"hard":   12,
	"insane": 19,
}

// document is the stored form. Version 1 documents carry difficulty and a
// string threshold; level and ceiling fields are decoded loosely.
type document struct {
	Version      int             `json:"version,omitempty"`
	Level        json.RawMessage `json:"level,omitempty"`
	StackCeiling json.RawMessage `json:"stack_ceiling,omitempty"`
	Threshold    json.RawMessage `json:"threshold,omitempty"`
	Difficulty   string          `json:"difficulty,omitempty"`
}

type encoded struct {
	Version      int `json:"version"`
	Level        int `json:"level"`
	StackCeiling int `json:"stack_ceiling"`
}

// Parse decodes a stored settings document of any version into normalized
// settings. An empty document yields the defaults.
func Parse(doc []byte) (model.Settings, error) {
	if len(strings.TrimSpace(string(doc))) == 0 {
		return model.DefaultSettings(), nil
	}

	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return model.DefaultSettings(), fmt.Errorf("%w: %v", model.ErrUnsupportedFormat, err)
	}
	if d.Version > CurrentVersion {
		return model.DefaultSettings(), fmt.Errorf("%w: version %d", model.ErrUnsupportedFormat, d.Version)
	}

	level, ok := looseInt(d.Level)
	if !ok {
		level, ok = legacyDifficulty[strings.ToLower(strings.TrimSpace(d.Difficulty))]
		if !ok {
			level = model.DefaultLevel
		}
	}

	ceilingRaw := d.StackCeiling
	if len(ceilingRaw) == 0 {
		ceilingRaw = d.Threshold
	}
	ceiling, ok := looseInt(ceilingRaw)
	if !ok {
		ceiling = model.DefaultStackCeiling
	}

	return Normalize(model.Settings{Level: level, StackCeiling: ceiling}), nil
}

// Normalize clamps the level into range and resets an out-of-range ceiling
// to the default
func Normalize(s model.Settings) model.Settings {
	if s.Level < model.MinLevel {
		s.Level = model.MinLevel
	}
	if s.Level > model.MaxLevel {
		s.Level = model.MaxLevel
	}
	if s.StackCeiling < model.MinStackCeiling || s.StackCeiling > model.MaxStackCeiling {
		s.StackCeiling = model.DefaultStackCeiling
	}
	return s
}

// Encode produces the current-version document for settings
func Encode(s model.Settings) ([]byte, error) {
	return json.Marshal(encoded{
		Version:      CurrentVersion,
		Level:        s.Level,
		StackCeiling: s.StackCeiling,
	})
}

// looseInt accepts a JSON number or a numeric string. Numbers are truncated
// and pinned to the int32 range so huge values still clamp the right way.
func looseInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(max(min(f, math.MaxInt32), math.MinInt32)), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Service stores settings per profile
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new settings Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "settings")),
	}
}

// Get returns the settings for a profile. Missing or unreadable documents
// fall back to the defaults; only storage failures are returned as errors.
func (s *Service) Get(ctx context.Context, profile string) (model.Settings, error) {
	profile = ProfileName(profile)

	doc, err := s.storage.GetSettings(ctx, profile)
	if errors.Is(err, model.ErrSettingsNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.DefaultSettings(), err
	}

	settings, err := Parse(doc)
	if err != nil {
		s.logger.Warn("stored settings unreadable, using defaults",
			slog.String("profile", profile),
			slog.String("error", err.Error()),
		)
	}
	return settings, nil
}

// Save validates and stores settings for a profile in the current format
func (s *Service) Save(ctx context.Context, profile string, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	doc, err := Encode(settings)
	if err != nil {
		return err
	}
	if err := s.storage.SaveSettings(ctx, ProfileName(profile), doc); err != nil {
		return err
	}
	s.logger.Info("settings saved",
		slog.String("profile", ProfileName(profile)),
		slog.Int("level", settings.Level),
		slog.Int("stack_ceiling", settings.StackCeiling),
	)
	return nil
}

// ProfileName returns the profile to use for a possibly empty name
func ProfileName(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return model.DefaultProfile
	}
	return profile
}
