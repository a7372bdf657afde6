package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/client"
)

// Import creates every row in order, one at a time, and reloads the record
// set once all rows were tried. Rows missing required fields and failed
// creates count as errors; an existing record counts as a success.
// Individual failures are not notified, only the aggregate is.
// The returned error is the reload failure, if any, which leaves the
// status at [StatusError].
func (rc *Reconciler) Import(ctx context.Context, rows []map[string]any) (addressbook.ImportOutcome, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.status(StatusImporting)
	var outcome addressbook.ImportOutcome
	for i, row := range rows {
		r := addressbook.FromRow(row)
		if err := r.Validate(); err != nil {
			rc.logger.DebugContext(ctx, "import row skipped", "row", i+1, "err", err)
			outcome.Errors++
			continue
		}

		_, err := rc.repo.Create(ctx, r)
		switch {
		case err == nil, errors.Is(err, client.ErrConflict):
			outcome.Success++
		default:
			rc.logger.DebugContext(ctx, "import row failed", "row", i+1, "err", err)
			outcome.Errors++
		}
	}

	rc.logger.InfoContext(ctx, "import done", "success", outcome.Success, "errors", outcome.Errors)
	if err := rc.refresh(ctx); err != nil {
		// the error status stays
		return outcome, err
	}
	rc.notifier.Status(fmt.Sprintf("import done: %d succeeded, %d failed", outcome.Success, outcome.Errors))
	return outcome, nil
}
