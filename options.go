package fx

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultDuration is the animation length used when none is given.
const DefaultDuration = time.Second

// Options configures one animation. The values are passed back to the
// animation callback on every frame.
type Options struct {
	Duration time.Duration `validate:"gte=0"`
	Easing   Easing        `validate:"easing"`
	Infinite bool          // wrap progress every Duration until stopped
	Debug    bool          // log every frame of this animation

	// Set on the copy handed to an animation callback.
	anim   string
	settle Awaitable
}

// AnimationID returns the ID of the animation whose callback received o, or
// "" outside a callback.
func (o Options) AnimationID() string { return o.anim }

// Option mutates Options during construction.
type Option func(*Options)

// DefaultOptions returns one second, ease-in-out, finite.
func DefaultOptions() Options {
	return Options{Duration: DefaultDuration, Easing: EaseInOut}
}

// WithDuration sets the animation length. Zero completes on the first frame.
func WithDuration(d time.Duration) Option {
	return func(o *Options) { o.Duration = d }
}

// WithEasing sets the progress transform.
func WithEasing(e Easing) Option {
	return func(o *Options) { o.Easing = e }
}

// Infinite makes the animation loop until stopped.
func Infinite() Option {
	return func(o *Options) { o.Infinite = true }
}

// Debug logs every frame of the animation at info level.
func Debug() Option {
	return func(o *Options) { o.Debug = true }
}

// WithOptions replaces all options at once. Empty Easing keeps the default.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		e := o.Easing
		*o = opts
		if o.Easing == "" {
			o.Easing = e
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("easing", func(fl validator.FieldLevel) bool {
		return Easing(fl.Field().String()).Valid()
	})
	return v
}

// NewOptions applies opts over DefaultOptions and validates the result.
func NewOptions(opts ...Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate reports invalid option combinations, wrapped in ErrInvalidOptions.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidOptions, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.Infinite && o.Duration == 0 {
		return fmt.Errorf("%w: infinite animation needs a positive duration", ErrInvalidOptions)
	}
	return nil
}
