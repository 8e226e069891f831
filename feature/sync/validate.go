package sync

import (
	"errors"
	"fmt"

	"douban2feishu/feature/sync/models"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks rejections of the caller's payload, as opposed to
// remote or infrastructure failures.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// ValidateTarget checks that a target carries everything needed to reach
// the remote table.
func ValidateTarget(target models.TargetConfig) error {
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: target: %v", ErrInvalidInput, err)
	}
	if target.Creds.AppID == "" || target.Creds.AppSecret == "" {
		return fmt.Errorf("%w: target: missing credentials", ErrInvalidInput)
	}
	return nil
}

// ValidateRecords rejects a snapshot before any remote call is made. The
// first invalid record fails the whole batch; callers fix the snapshot,
// not the engine.
func ValidateRecords(target models.TargetConfig, records []models.DomainRecord) error {
	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrInvalidInput, i, err)
		}
		if rec.Category != target.ContentType {
			return fmt.Errorf("%w: record %d (%s): category %q does not match target content type %q",
				ErrInvalidInput, i, rec.SubjectID, rec.Category, target.ContentType)
		}
	}
	return nil
}
