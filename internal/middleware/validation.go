package middleware

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hmsd/hospital-api/internal/model"
)

// RegisterValidators installs the domain validation tags on gin's binding
// engine and makes validation errors report JSON field names. Call once at
// startup before any request binding runs.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	must(v.RegisterValidation("apptdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.DateLayout, fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("apptslot", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.SlotLayout, fl.Field().String())
		return err == nil
	}))

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
