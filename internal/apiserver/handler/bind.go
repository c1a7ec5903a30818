package handler

import (
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the json name of a field
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "" {
					name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
				}
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// bindJSON decodes the request body into obj. An empty body decodes to the zero value.
func bindJSON(c *gin.Context, obj any) error {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err)
	}
	return nil
}

// bindQuery decodes the query string into obj
func bindQuery(c *gin.Context, obj any) error {
	useJSONFieldNames()
	if err := c.ShouldBindQuery(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return errorx.MissingField(fe.Field())
		}
		return errorx.InvalidInput(fe.Field(), "failed the '"+fe.Tag()+"' rule")
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return errorx.InvalidFormat("query", numErr.Num)
	}
	return errorx.InvalidInput("body", err.Error())
}

// paramID reads a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errorx.InvalidFormat(name, raw)
	}
	return uint(id), nil
}
