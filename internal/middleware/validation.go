package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/pkg/validation"
)

var registerValidators sync.Once

// RegisterValidators installs the custom binding tags on gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := validation.Register(v); err != nil {
				panic(err)
			}
		}
	})
}

// BindJSON binds and validates the body into obj, writing a 400 on failure
func BindJSON(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindForm binds and validates form or query values into obj
func BindForm(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBind(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
