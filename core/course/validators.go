package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/mastery"
)

var (
	difficultyTag  = "difficulty"
	difficultyText = "must be one of: easy, medium, hard"
)

// InitValidators registers the course package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(validate, translator, difficultyTag, difficultyText)
}

// difficultyValidation checks that the provided difficulty is a known level.
func difficultyValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case mastery.DifficultyEasy, mastery.DifficultyMedium, mastery.DifficultyHard:
		return true
	}
	return false
}
