// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"miplata/internal/ledger"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the custom tags and the decimal type func on v.
func RegisterOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("year_month", validateYearMonth)
	_ = v.RegisterValidation("time_range", validateTimeRange)
}

// decimalValue lets numeric tags such as gte=0 and gt=0 apply to
// decimal.Decimal fields.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return ledger.Kind(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(ledger.DateLayout, fl.Field().String())
	return err == nil
}

func validateYearMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse(ledger.MonthLayout, fl.Field().String())
	return err == nil
}

func validateTimeRange(fl validator.FieldLevel) bool {
	_, err := ledger.ParseTimeRange(fl.Field().String())
	return err == nil
}
