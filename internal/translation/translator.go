package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/cache"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
	"askverba.app/server/internal/language"
)

const (
	cacheKeyPrefix  = "translation:v1:"
	DefaultMaxChars = 5000
)

var (
	// ErrTranslationFailed is the only error callers see for generator,
	// schema or decoding failures. Details are logged.
	ErrTranslationFailed = errors.New("failed to translate")
	ErrInvalidInput      = errors.New("invalid translation request")
)

type HistoryStore interface {
	CreateHistoryEntry(ctx context.Context, entry *db.TranslationHistory) error
}

type languageDetector interface {
	DetectISO6391(text string) string
}

type Request struct {
	Text          string
	Mode          Mode
	UserID        string
	SaveToHistory bool
}

type Response struct {
	Result         Result `json:"result"`
	FromCache      bool   `json:"fromCache"`
	ProcessingTime int64  `json:"processingTime"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
	HistoryID      string `json:"historyId,omitempty"`
}

type Options struct {
	Pair      language.Pair
	MaxChars  int
	CacheTTL  time.Duration
	Generator string
}

// cachedTranslation is the cache payload. The direction is kept so history
// entries written on a cache hit carry the right languages.
type cachedTranslation struct {
	Result     Result `json:"result"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Translator checks the cache, calls a generator on a miss, validates its
// output, and records history for signed-in callers.
type Translator struct {
	logger    zerolog.Logger
	registry  *Registry
	cache     cache.Store
	history   HistoryStore
	detector  languageDetector
	pair      language.Pair
	maxChars  int
	cacheTTL  time.Duration
	generator string
}

func NewTranslator(
	logger zerolog.Logger,
	registry *Registry,
	store cache.Store,
	history HistoryStore,
	detector languageDetector,
	opts Options,
) (*Translator, error) {
	if registry == nil {
		return nil, fmt.Errorf("generator registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if opts.Pair.Source == "" || opts.Pair.Target == "" {
		return nil, fmt.Errorf("language pair is required")
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if _, err := loadSchemas(); err != nil {
		return nil, err
	}

	return &Translator{
		logger:    logger.With().Str("component", "translator").Logger(),
		registry:  registry,
		cache:     store,
		history:   history,
		detector:  detector,
		pair:      opts.Pair,
		maxChars:  opts.MaxChars,
		cacheTTL:  opts.CacheTTL,
		generator: opts.Generator,
	}, nil
}

func (t *Translator) Translate(ctx context.Context, req Request) (*Response, error) {
	started := globaltime.UTC()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > t.maxChars {
		return nil, fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, t.maxChars)
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	key := CacheKey(mode, text)
	logger := t.logger.With().Str("mode", string(mode)).Str("cache_key", key).Logger()

	entry, fromCache := t.lookup(ctx, logger, key)
	if !fromCache {
		entry, err = t.generate(ctx, logger, mode, text)
		if err != nil {
			return nil, err
		}
		t.store(ctx, logger, key, entry)
	}

	resp := &Response{
		Result:     entry.Result,
		FromCache:  fromCache,
		SourceLang: entry.SourceLang,
		TargetLang: entry.TargetLang,
	}

	userID := strings.TrimSpace(req.UserID)
	if req.SaveToHistory && userID != "" && t.history != nil {
		resp.HistoryID = t.recordHistory(ctx, logger, userID, text, mode, entry)
	}

	resp.ProcessingTime = globaltime.Since(started).Milliseconds()
	return resp, nil
}

func (t *Translator) lookup(ctx context.Context, logger zerolog.Logger, key string) (cachedTranslation, bool) {
	raw, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Msg("translation cache read failed")
		return cachedTranslation{}, false
	}
	if !ok {
		return cachedTranslation{}, false
	}

	var entry cachedTranslation
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Warn().Err(err).Msg("discarding undecodable cached translation")
		return cachedTranslation{}, false
	}
	if err := entry.Result.Validate(); err != nil {
		logger.Warn().Err(err).Msg("discarding invalid cached translation")
		return cachedTranslation{}, false
	}
	return entry, true
}

func (t *Translator) generate(ctx context.Context, logger zerolog.Logger, mode Mode, text string) (cachedTranslation, error) {
	generator, err := t.registry.Generator(t.generator)
	if err != nil {
		logger.Error().Err(err).Msg("no translation generator available")
		return cachedTranslation{}, ErrTranslationFailed
	}
	schema, err := responseSchema(mode)
	if err != nil {
		logger.Error().Err(err).Msg("load response schema")
		return cachedTranslation{}, ErrTranslationFailed
	}

	pair := t.direction(NormalizeText(text))
	raw, err := generator.Generate(ctx, GenerateRequest{
		SystemPrompt: systemPrompt(mode, pair),
		UserPrompt:   userPrompt(mode, pair, text),
		SchemaName:   "askverba_" + string(mode) + "_translation",
		Schema:       schema,
	})
	if err != nil {
		logger.Error().Err(err).Str("generator", generator.Name()).Msg("translation generator failed")
		return cachedTranslation{}, ErrTranslationFailed
	}

	result, err := decodeGenerated(mode, raw)
	if err != nil {
		logger.Error().Err(err).Str("generator", generator.Name()).Msg("generated translation rejected")
		return cachedTranslation{}, ErrTranslationFailed
	}

	return cachedTranslation{Result: result, SourceLang: pair.Source, TargetLang: pair.Target}, nil
}

// direction translates into the configured target unless the text is already
// written in it, in which case the pair is reversed.
func (t *Translator) direction(text string) language.Pair {
	if t.detector == nil {
		return t.pair
	}
	if detected := t.detector.DetectISO6391(text); detected != "" && detected == t.pair.Target {
		return t.pair.Reverse()
	}
	return t.pair
}

func (t *Translator) store(ctx context.Context, logger zerolog.Logger, key string, entry cachedTranslation) {
	payload, err := json.Marshal(entry)
	if err != nil {
		logger.Error().Err(err).Msg("encode translation for cache")
		return
	}
	if err := t.cache.Set(ctx, key, payload, t.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("translation cache write failed")
	}
}

func (t *Translator) recordHistory(ctx context.Context, logger zerolog.Logger, userID, text string, mode Mode, entry cachedTranslation) string {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("encode translation for history")
		return ""
	}

	row := &db.TranslationHistory{
		UserID:     userID,
		Text:       text,
		Mode:       string(mode),
		SourceLang: entry.SourceLang,
		TargetLang: entry.TargetLang,
		Result:     payload,
	}
	if err := t.history.CreateHistoryEntry(ctx, row); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("save translation history failed")
		return ""
	}
	return row.ID
}

// CacheKey identifies a translation by mode and normalized text. Case and
// whitespace differences map to the same key.
func CacheKey(mode Mode, text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return cacheKeyPrefix + string(mode) + ":" + hex.EncodeToString(sum[:])
}

func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
