package tracker

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"pricewatcher/internal/models"
	"pricewatcher/internal/repository"
)

// Dedup suppresses repeat notifications for a sustained dip. Per product the
// state machine is {quiet, alerted}: the first alerting decision notifies and
// moves to alerted, further alerting decisions are silent, and a no_alert
// decision (price recovered) moves back to quiet without notifying.
type Dedup struct {
	Repo repository.Repository
}

// ShouldNotify reports whether a notification should go out for this
// decision. Missing state counts as quiet.
func (d *Dedup) ShouldNotify(ctx context.Context, productURL string, dec Decision) (bool, error) {
	if d == nil || d.Repo == nil {
		return false, nil
	}
	if !dec.Alert() {
		return false, nil
	}
	state, err := d.Repo.GetAlertState(ctx, productURL)
	if err != nil {
		return false, err
	}
	if state == nil || state.Status != models.AlertStatusAlerted {
		return true, nil
	}
	return false, nil
}

// Mark records the handled decision. Callers must only invoke it after a
// successful notification (or on suppressed/no_alert paths); skipping it on
// notify failure keeps the state quiet so the next cycle retries.
func (d *Dedup) Mark(ctx context.Context, productURL string, dec Decision) error {
	if d == nil || d.Repo == nil {
		return nil
	}
	status := models.AlertStatusQuiet
	if dec.Alert() {
		status = models.AlertStatusAlerted
	}
	payload, err := json.Marshal(dec)
	if err != nil {
		return err
	}
	return d.Repo.SaveAlertState(ctx, &models.AlertState{
		ProductURL:   productURL,
		Status:       status,
		LastDecision: datatypes.JSON(payload),
		UpdatedAt:    time.Now().UTC(),
	})
}
