package utils

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"oreoffice-backend/models"
)

// RegisterValidators adds the domain tags used in request binding.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"yearmonth": func(fl validator.FieldLevel) bool {
			_, err := time.Parse(YearMonthLayout, fl.Field().String())
			return err == nil
		},
		"date": func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
		"roomtype": func(fl validator.FieldLevel) bool {
			return models.RoomType(fl.Field().String()).Valid()
		},
		"roomstatus": func(fl validator.FieldLevel) bool {
			return models.RoomStatus(fl.Field().String()).Valid()
		},
		"tenanttype": func(fl validator.FieldLevel) bool {
			return models.TenantType(fl.Field().String()).Valid()
		},
		"txtype": func(fl validator.FieldLevel) bool {
			return models.TransactionType(fl.Field().String()).Valid()
		},
		"userrole": func(fl validator.FieldLevel) bool {
			return models.UserRole(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
