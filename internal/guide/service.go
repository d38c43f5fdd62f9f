// Package guide turns an (agency, action) request into a step-by-step guide.
//
// Guides are cached on (agency, action, language). Location never enters the
// prompt or the cache key; the "Where to Go" block is appended afterwards.
package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/ailink/prompt"
	"github.com/govguide/govguide/internal/cache"
	"github.com/govguide/govguide/internal/metrics"
	"github.com/govguide/govguide/internal/observability"
)

// DefaultPromptSlug names the prompt used for guides.
const DefaultPromptSlug = "guide"

// ErrProvidersUnavailable is returned when no provider produced a guide and
// mock fallback is disabled.
var ErrProvidersUnavailable = errors.New("guide providers unavailable")

// Completer is the provider chain as seen by the service.
type Completer interface {
	Complete(ctx context.Context, req *driver.Request) (*ailink.Result, error)
}

// Config controls guide generation.
type Config struct {
	MockFallback      bool   `mapstructure:"mock_fallback"`
	PromptSlug        string `mapstructure:"prompt_slug"`
	PromptsDir        string `mapstructure:"prompts_dir"`
	MaxImageBytes     int    `mapstructure:"max_image_bytes"`
	MaxImageDimension int    `mapstructure:"max_image_dimension"`
	MaxImagePixels    int    `mapstructure:"max_image_pixels"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MockFallback:      true,
		PromptSlug:        DefaultPromptSlug,
		MaxImageBytes:     DefaultMaxImageBytes,
		MaxImageDimension: DefaultMaxImageDimension,
		MaxImagePixels:    DefaultMaxImagePixels,
	}
}

// CachedGuide is the cached form of a provider answer, before location
// injection.
type CachedGuide struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// Result is a served guide.
type Result struct {
	Text     string `json:"result"`
	Provider string `json:"provider,omitempty"`
	Cached   bool   `json:"cached"`
	Mock     bool   `json:"mock,omitempty"`
}

// Service generates guides.
type Service struct {
	cfg     Config
	cache   cache.Store[CachedGuide]
	chain   Completer
	catalog *Catalog
	prompts prompt.Registry
}

// NewService wires a guide service. The store and chain are required.
func NewService(cfg Config, store cache.Store[CachedGuide], chain Completer, catalog *Catalog, prompts prompt.Registry) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("guide cache store is required")
	}
	if chain == nil {
		return nil, fmt.Errorf("guide provider chain is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("guide prompt registry is required")
	}
	if strings.TrimSpace(cfg.PromptSlug) == "" {
		cfg.PromptSlug = DefaultPromptSlug
	}
	if _, err := prompts.Get(cfg.PromptSlug); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, cache: store, chain: chain, catalog: catalog, prompts: prompts}, nil
}

// CacheKey returns the cache key for a request.
func CacheKey(req Request) string {
	return cache.GenerateKey("guide", req.Agency, req.Action, req.Language)
}

// Catalog returns the agency catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Generate serves a guide from cache or the provider chain.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Language = NormalizeLanguage(req.Language)

	agency, ok := s.catalog.Lookup(req.Agency)
	if !ok {
		agency = Agency{Name: req.Agency}
	}

	var image *content.ContentBlock
	if req.Image != "" {
		block, err := PrepareImage(req.Image, ImageOptions{
			MaxBytes:     s.cfg.MaxImageBytes,
			MaxDimension: s.cfg.MaxImageDimension,
			MaxPixels:    s.cfg.MaxImagePixels,
		})
		if err != nil {
			return nil, err
		}
		image = &block
	}

	key := CacheKey(req)
	if image == nil {
		if hit, ok := s.cache.Get(ctx, key); ok {
			metrics.RecordCacheLookup("hit")
			metrics.RecordGuideGeneration("cache")
			return &Result{
				Text:     InjectLocation(hit.Text, agency, req.Location, req.Language),
				Provider: hit.Provider,
				Cached:   true,
			}, nil
		}
		metrics.RecordCacheLookup("miss")
	} else {
		metrics.RecordCacheLookup("bypass")
	}

	completion, err := s.complete(ctx, req, agency, image)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !s.cfg.MockFallback {
			return nil, fmt.Errorf("%w: %w", ErrProvidersUnavailable, err)
		}
		if observability.ServerLogger != nil {
			observability.ServerLogger.Warn("Serving mock guide",
				zap.String("agency", req.Agency),
				zap.Error(err))
		}
		metrics.RecordGuideGeneration("mock")
		return &Result{
			Text: InjectLocation(MockGuide(req.Agency), agency, req.Location, req.Language),
			Mock: true,
		}, nil
	}

	text := completion.Text()
	if image == nil {
		s.cache.Set(ctx, key, CachedGuide{Text: text, Provider: completion.Provider})
	}
	metrics.RecordGuideGeneration(completion.Provider)

	return &Result{
		Text:     InjectLocation(text, agency, req.Location, req.Language),
		Provider: completion.Provider,
	}, nil
}

func (s *Service) complete(ctx context.Context, req Request, agency Agency, image *content.ContentBlock) (*ailink.Result, error) {
	p, err := s.prompts.Get(s.cfg.PromptSlug)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"agency":      req.Agency,
		"action":      req.Action,
		"language":    req.Language,
		"homepage":    agency.Homepage,
		"appointment": agency.Appointment,
	}
	if image != nil {
		vars["has_image"] = "true"
	}
	rendered, err := p.Render(vars)
	if err != nil {
		return nil, err
	}

	blocks := []content.ContentBlock{content.Text(rendered.User)}
	if image != nil {
		blocks = append(blocks, *image)
	}

	return s.chain.Complete(ctx, &driver.Request{
		System:   rendered.System,
		Messages: []content.Message{content.UserMessage(blocks...)},
		Metadata: map[string]string{"prompt": p.Config.Slug},
	})
}
