package api

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"setram.dev/tram/model"
)

// Response shapes of the tram API. Every body is decoded into one of
// these and validated before anything else sees it.

type scheduleResponse struct {
	Station   string         `json:"station"`
	Route     string         `json:"route"`
	NextTrams []tramResponse `json:"nextTrams" validate:"required,dive"`
	Error     string         `json:"error"`
}

type tramResponse struct {
	Time string `json:"time" validate:"required,hhmm"`
}

type travelTimeResponse struct {
	TravelTime *float64         `json:"travelTime" validate:"required,gte=0"`
	Details    []detailResponse `json:"details" validate:"dive"`
	Error      string           `json:"error"`
}

type detailResponse struct {
	Station string `json:"station" validate:"required"`
	Heure   string `json:"heure"`
}

type delayResponse struct {
	Success *bool                  `json:"success" validate:"required"`
	Message string                 `json:"message"`
	Data    []delayArrivalResponse `json:"data" validate:"dive"`
}

type delayArrivalResponse struct {
	Time          string   `json:"time" validate:"required,hhmm"`
	RemainingTime *float64 `json:"remaining_time" validate:"required"`
}

type statusResponse struct {
	Statut    string `json:"statut" validate:"required"`
	ImagePath string `json:"image_path"`
	Error     string `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := model.ParseClock(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(err)
	}
	return v
}

// Decodes body into out and validates it. Bodies that are empty or a
// bare JSON null yield ErrEmptyResponse. The error field, which the
// API sets on failure, is not checked here.
func decode(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding: %v", err)
	}

	return nil
}

func check(out interface{}) error {
	if err := validate.Struct(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "validating: %v", err)
	}
	return nil
}
