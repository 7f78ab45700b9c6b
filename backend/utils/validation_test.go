package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Name       string   `json:"name" validate:"omitempty,min=2"`
	Category   string   `json:"category" validate:"required,article_category"`
	Difficulty string   `json:"difficulty" validate:"difficulty"`
	Points     int      `json:"points" validate:"omitempty,gt=0,lte=100"`
	Options    []string `json:"options" validate:"omitempty,dive,required"`
}

func TestValidate(t *testing.T) {
	valid := sampleRequest{Email: "a@example.com", Category: "Civil Rights"}
	assert.Nil(t, Validate(valid))

	errs := Validate(sampleRequest{
		Email:      "nope",
		Name:       "J",
		Category:   "Astrology",
		Difficulty: "Impossible",
		Points:     500,
	})
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "must be at least 2 characters", errs["name"])
	assert.Contains(t, errs["category"], "Civil Rights")
	assert.Contains(t, errs["difficulty"], "Easy")
	assert.Equal(t, "must be at most 100", errs["points"])
}

func TestValidateRequiredAndDive(t *testing.T) {
	errs := Validate(sampleRequest{Options: []string{"A", ""}})
	assert.Equal(t, "is required", errs["email"])
	assert.Equal(t, "is required", errs["category"])
	assert.Equal(t, "is required", errs["options[1]"])
}
