package dictionary

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
)

// MinWordLength is the shortest word the dictionary will ever accept
const MinWordLength = 3

// Checker is the word predicate the game consumes. Implementations must
// answer false rather than fail when they cannot decide.
type Checker interface {
	CheckWord(ctx context.Context, word string) bool
}

// Config holds dictionary behaviour switches
type Config struct {
	// AllowAny accepts every word of sufficient length without a lookup.
	// Debug only; every such acceptance is logged at WARN.
	AllowAny bool

	Logger *slog.Logger
}

// Service provides dictionary/word validation functionality
type Service struct {
	storage  storage.Storage
	allowAny bool
	logger   *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("component", "dictionary"))
	if cfg.AllowAny {
		logger.Warn("allow-any-word mode enabled: words are accepted without a dictionary lookup")
	}
	return &Service{
		storage:  storage,
		allowAny: cfg.AllowAny,
		logger:   logger,
		words:    make(map[string]struct{}),
	}
}

// Normalize lowercases and trims a word, reporting whether it is a
// dictionary candidate (alphabetic only and long enough)
func Normalize(word string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < MinWordLength {
		return w, false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return w, false
		}
	}
	return w, true
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file. A .json file must hold an
// array of strings; anything else is read as one word per line.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		words, err = readJSON(file)
	} else {
		words, err = readLines(file)
	}
	if err != nil {
		return fmt.Errorf("read dictionary %s: %w", path, err)
	}

	if err := s.loadWords(words); err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveDictionaryWords(ctx, s.snapshot()); err != nil {
		return err
	}

	s.logger.Info("dictionary loaded",
		slog.String("path", path),
		slog.Int("word_count", s.WordCount()),
	)
	return nil
}

// Load tries the file first and falls back to the copy in storage.
// If neither is available the dictionary stays unloaded and rejects every word.
func (s *Service) Load(ctx context.Context, path string) error {
	fileErr := s.LoadFromFile(ctx, path)
	if fileErr == nil {
		return nil
	}
	if err := s.LoadFromStorage(ctx); err != nil {
		s.logger.Error("dictionary unavailable; all words will be rejected",
			slog.String("path", path),
			slog.String("error", fileErr.Error()),
		)
		return errors.Join(fileErr, err)
	}
	s.logger.Warn("dictionary file unreadable, using stored copy",
		slog.String("path", path),
		slog.String("error", fileErr.Error()),
		slog.Int("word_count", s.WordCount()),
	)
	return nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if w, ok := Normalize(word); ok {
			set[w] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = set
	s.loaded = true
	return nil
}

func (s *Service) snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	words := make([]string, 0, len(s.words))
	for w := range s.words {
		words = append(words, w)
	}
	return words
}

// IsValidWord checks if a word exists in the dictionary.
// Unloaded dictionaries reject everything.
func (s *Service) IsValidWord(word string) bool {
	w, ok := Normalize(word)
	if !ok {
		return false
	}

	if s.allowAny {
		s.logger.Warn("word accepted without lookup", slog.String("word", w))
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok = s.words[w]
	return ok
}

// CheckWord implements Checker. A cancelled context counts as a rejection.
func (s *Service) CheckWord(ctx context.Context, word string) bool {
	if ctx.Err() != nil {
		return false
	}
	return s.IsValidWord(word)
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// AllowsAny returns whether allow-any-word mode is on
func (s *Service) AllowsAny() bool {
	return s.allowAny
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// FindFormable returns dictionary words that can be spelled from the given
// letters, each letter used at most once, longest first then alphabetical.
// At most limit words are returned (no limit when limit <= 0).
func (s *Service) FindFormable(letters []rune, limit int) []string {
	avail := make(map[rune]int)
	for _, l := range letters {
		if l != 0 {
			avail[toLower(l)]++
		}
	}

	s.mu.RLock()
	var found []string
	for w := range s.words {
		if canForm(w, avail) {
			found = append(found, w)
		}
	}
	s.mu.RUnlock()

	sortByLengthThenAlpha(found)
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

func canForm(word string, avail map[rune]int) bool {
	if len(word) > sumCounts(avail) {
		return false
	}
	used := make(map[rune]int, len(word))
	for _, r := range word {
		used[r]++
		if used[r] > avail[r] {
			return false
		}
	}
	return true
}

func sumCounts(m map[rune]int) int {
	total := 0
	for _, c := range m {
		total += c
	}
	return total
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// sortByLengthThenAlpha orders words longest first, ties alphabetically
func sortByLengthThenAlpha(words []string) {
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
}

func readLines(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}

// readJSON reads an array, skipping any element that is not a string
func readJSON(r io.Reader) ([]string, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(raw))
	for _, item := range raw {
		var w string
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// Interface check
type ServiceInterface interface {
	Checker
	IsValidWord(word string) bool
	IsLoaded() bool
	WordCount() int
	FindFormable(letters []rune, limit int) []string
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
