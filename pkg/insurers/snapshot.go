package insurers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quotescope/quotescope/pkg/browser"
)

// snapshot stores the page a failed run ended on. Errors are logged and
// otherwise ignored.
func (w *CalculatorWorker) snapshot(page *browser.Page) {
	if w.cfg.ArtifactDir == "" {
		return
	}
	body, err := page.HTML()
	if err != nil || len(body) == 0 {
		return
	}
	if err := os.MkdirAll(w.cfg.ArtifactDir, 0o755); err != nil {
		w.log.Warnf("[%s] Could not create artifact directory: %v", w.profile.DisplayName, err)
		return
	}
	path := filepath.Join(w.cfg.ArtifactDir, snapshotName(w.profile.Company, time.Now()))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		w.log.Warnf("[%s] Could not write error snapshot: %v", w.profile.DisplayName, err)
		return
	}
	w.log.Infof("[%s] Error snapshot of %q (%s) saved to %s", w.profile.DisplayName, page.Title(), page.URL(), path)
}

func snapshotName(company string, at time.Time) string {
	return fmt.Sprintf("%s-error-%d-%s.html", company, at.UnixMilli(), uuid.NewString()[:8])
}
