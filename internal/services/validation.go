package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/expense-tracker-be/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(v, "maxamount", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() <= models.MaxAmount.Float()
	})
	// Amounts that round to zero cents are not positive once stored.
	mustRegister(v, "cents", func(fl validator.FieldLevel) bool {
		return models.ValidAmount(fl.Field().Float())
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "expensedate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

type signupRules struct {
	FirstName string `validate:"min=3"`
	LastName  string `validate:"min=3"`
	Email     string `validate:"required,email"`
	Password  string `validate:"min=6"`
}

func signupMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "FirstName":
		return "First name must be at least 3 characters long"
	case "LastName":
		return "Last name must be at least 3 characters long"
	case "Email":
		return "Invalid email"
	default:
		return "Password must be at least 6 characters long"
	}
}

// A nil pointer means the field was not supplied. On create every field
// but the description is mandatory.
type createExpenseRules struct {
	Amount   *float64 `validate:"required,gt=0,maxamount,cents"`
	Category *string  `validate:"required,category"`
	Date     *string  `validate:"required,expensedate"`
}

type updateExpenseRules struct {
	Amount   *float64 `validate:"omitnil,gt=0,maxamount,cents"`
	Category *string  `validate:"omitnil,category"`
	Date     *string  `validate:"omitnil,required,expensedate"`
}

func expenseMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Amount":
		if fe.Tag() == "maxamount" {
			return "Amount must not exceed " + models.MaxAmount.String() + "."
		}
		return "Amount must be a positive number."
	case "Category":
		return "Invalid category. Expected one of: " + models.CategoryNames()
	default:
		if fe.Tag() == "required" {
			return "Date is required"
		}
		return "Invalid date"
	}
}

// check runs the struct rules and folds every violation into one ValidationError.
func check(rules interface{}, message func(validator.FieldError) string) error {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}
	return &ValidationError{Messages: messages}
}
