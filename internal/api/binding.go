package api

import (
	"sync" // One-time validator setup

	"github.com/gin-gonic/gin/binding"                               // Gin binding engine
	"github.com/go-playground/validator/v10"                         // Struct validation
	"github.com/go-playground/validator/v10/non-standard/validators" // notblank
)

var registerValidators sync.Once

// setupValidators adds the rules the request structs use beyond validator's built-ins
func setupValidators() {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Whitespace-only input counts as missing
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}
