package middleware

import (
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/i18n"
	"github.com/gin-gonic/gin"
)

// Lang stores the language of the request for translated responses
func Lang() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.XLang, i18n.LanguageFromRequest(c.Request))
		c.Next()
	}
}
