package config

import (
	"FaceBlur/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

func NewValidator() *validator.Validate {
	v := validator.New()

	if err := utils.RegisterVideoValidation(v); err != nil {
		logrus.WithError(err).Fatal("Failed to register video validation")
	}

	return v
}
