package utils

import (
	"github.com/go-playground/validator/v10"
)

const VideoFormatTag = "videoformat"

// RegisterVideoValidation adds the videoformat tag, which accepts object keys ending in an
// allowed video extension.
func RegisterVideoValidation(v *validator.Validate) error {
	return v.RegisterValidation(VideoFormatTag, func(fl validator.FieldLevel) bool {
		return IsAllowedVideoExtension(VideoExtension(fl.Field().String()))
	})
}
