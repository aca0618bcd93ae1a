package redis

import (
	"fmt"

	"github.com/mcoot/letterstacks/internal/model"
)

const defaultPrefix = "lstacks"

// sessionKey returns the Redis key for a session snapshot
func (s *Storage) sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", s.cfg.prefix(), id)
}

// settingsKey returns the Redis key for a profile's settings document
func (s *Storage) settingsKey(profile string) string {
	return fmt.Sprintf("%s:settings:%s", s.cfg.prefix(), profile)
}

// scoresKey returns the Redis key for the LIST holding every score record
func (s *Storage) scoresKey() string {
	return s.cfg.prefix() + ":scores"
}

// profileScoresKey returns the Redis key for the LIST of one profile's score records
func (s *Storage) profileScoresKey(profile string) string {
	return fmt.Sprintf("%s:idx:scores_for_profile:%s", s.cfg.prefix(), profile)
}

// dictionaryKey returns the Redis key for the dictionary word set
func (s *Storage) dictionaryKey() string {
	return s.cfg.prefix() + ":dictionary"
}
