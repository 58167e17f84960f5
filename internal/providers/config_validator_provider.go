package providers

import (
	"fmt"
	"strings"

	"github.com/gookit/validate"

	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func init() {
	validate.AddValidator("unixPath", func(val string) bool {
		return strings.HasPrefix(val, "/") && !strings.Contains(val, "\x00")
	})
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	return nil
}
