package oracle

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Path records which branch a guarded call took, for observability.
type Path string

const (
	PathOracle   Path = "oracle"
	PathFallback Path = "fallback"
)

// CallJSON runs one guarded oracle call: generate, strip fences, parse into
// T. Any failure — unavailable oracle, transport error, unparsable output —
// returns the provided fallback and PathFallback. It never returns an error;
// fallback behavior is the error handling.
func CallJSON[T any](ctx context.Context, gen Generator, modelName, site, prompt string, fallback T, log *zap.SugaredLogger) (T, Path) {
	raw, err := gen.GenerateJSON(ctx, modelName, prompt)
	if err != nil {
		log.Warnw("oracle call failed, using fallback", "site", site, "error", err)
		return fallback, PathFallback
	}

	var out T
	if err := json.Unmarshal([]byte(StripFences(raw)), &out); err != nil {
		log.Warnw("oracle output unparsable, using fallback", "site", site, "error", err)
		return fallback, PathFallback
	}

	return out, PathOracle
}
