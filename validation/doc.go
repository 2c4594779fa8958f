// Package validation validates configuration structs with the
// go-playground/validator library and reports failures as
// errors.AppError values carrying per-field details.
//
//	type TelemetryConfig struct {
//	    Endpoint   string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
//	    SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
//	}
//	err := validation.Validate(cfg)
package validation
