package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/genwire/genwire/config"
	"github.com/genwire/genwire/internal/utils"
	"github.com/genwire/genwire/observability"
)

// probeTimeout bounds the fallback probe: short enough not to block
// interactive startup, long enough to distinguish a live 429 from a network
// stall.
const probeTimeout = 2 * time.Second

// ResolveEffectiveModel decides which model identifier a session uses. It
// runs once, before the generator is constructed, and only probes when the
// configured model is the designated primary ([config.DefaultModel]); any
// other configured model is returned unchanged.
//
// The probe is a minimal completion request (one-token budget, zero
// temperature) against the primary model. Only a definitive HTTP 429
// downgrades to [config.FallbackModel]. Every other outcome — other statuses,
// success, malformed responses, timeout, transport failure — keeps the
// primary: the probe fails open, and the first real generation call surfaces
// a definitive error if the model is truly unusable. ResolveEffectiveModel
// never returns an error.
//
// A nil client falls back to http.DefaultClient.
func ResolveEffectiveModel(ctx context.Context, client *http.Client, cfg *config.ContentGeneratorConfig) string {
	if cfg.Model != config.DefaultModel {
		return cfg.Model
	}

	observer := observability.ObserverFromContext(ctx)

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	probe := chatCompletionRequest{
		Model:               cfg.Model,
		Messages:            []chatMessage{{Role: "user", Content: "ping"}},
		MaxCompletionTokens: utils.Ptr(1),
		Temperature:         utils.Ptr(0.0),
	}

	timer := utils.NewTimer()
	_, _, err := utils.DoPostSync[chatCompletionResponse](probeCtx, client, cfg.BaseURL+chatCompletionsEndpoint, cfg.APIKey, probe, defaultHeaders()...)
	timer.Stop()

	if err != nil {
		var statusErr *utils.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			if observer != nil {
				observer.Info(ctx, "Primary model rate-limited, session falls back to lighter model",
					observability.String(observability.AttrBackendModel, config.FallbackModel),
					observability.Duration("probe.duration", timer.GetDuration()),
				)
			}
			return config.FallbackModel
		}
		// Inconclusive probe (timeout, transport failure, other status):
		// assume availability.
		if observer != nil {
			observer.Debug(ctx, "Model probe inconclusive, keeping primary model",
				observability.Error(err),
				observability.Duration("probe.duration", timer.GetDuration()),
			)
		}
		return cfg.Model
	}

	return cfg.Model
}
