package browser

import (
	"log/slog"

	pkgbrowser "github.com/pkg/browser"
)

// Opener launches URLs in the user's default browser. Navigation is fire
// and forget; callers only log failures.
type Opener struct {
	logger *slog.Logger
}

func NewOpener(logger *slog.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) OpenURL(url string) error {
	o.logger.Info("opening url", "url", url)
	return pkgbrowser.OpenURL(url)
}
