package tally

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/tally/pkg/core"
)

var validate = validator.New()

func validateRecord(r core.Record) error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidRecord, err)
	}
	return nil
}
