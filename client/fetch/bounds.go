package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes is the upper bound used when none is supplied.
const DefaultMaxBytes int64 = 100 * 1024 * 1024

// SizeBounds is the inclusive [MinBytes, MaxBytes] envelope a fetched
// body must fit in.
type SizeBounds struct {
	MinBytes int64 `validate:"gte=0"`
	MaxBytes int64 `validate:"gte=0,gtefield=MinBytes"`
}

// DefaultBounds accepts any body up to [DefaultMaxBytes].
func DefaultBounds() SizeBounds {
	return SizeBounds{MinBytes: 0, MaxBytes: DefaultMaxBytes}
}

// ErrInvalidBounds is returned when a SizeBounds fails validation.
var ErrInvalidBounds = errors.New("invalid size bounds")

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("fetch: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

// Validate reports whether b is a usable envelope.
func (b SizeBounds) Validate() error {
	if err := validate.Struct(b); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %w", ErrInvalidBounds, err)
		}

		msgs := make([]string, len(verrors))
		for i, verror := range verrors {
			msgs[i] = verror.Translate(translator)
		}

		return fmt.Errorf("%w: %s", ErrInvalidBounds, strings.Join(msgs, "; "))
	}

	return nil
}

func (b SizeBounds) String() string {
	return fmt.Sprintf("[%d, %d]", b.MinBytes, b.MaxBytes)
}
