package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators installs the bookkeeping validation tags on gin's validator:
// decimal_gte0 rejects negative decimal.Decimal amounts.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		err := v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			d, err := decimal.NewFromString(s)
			return err == nil && !d.IsNegative()
		})
		if err != nil {
			panic(fmt.Sprintf("registering decimal_gte0 validator: %v", err))
		}
	})
}
