package errorx

import (
	"github.com/amoylab/catalog/internal/i18n"
	"github.com/gin-gonic/gin"
)

// translate replaces the English message with the request language's version.
// Details double as template data so messages can name the field or resource.
func translate(c *gin.Context, apiErr *APIError) {
	if apiErr.MessageID == "" {
		return
	}
	data := map[string]any{"field": "", "value": "", "resource_type": "resource"}
	for k, v := range apiErr.Details {
		data[k] = v
	}
	if msg := i18n.TranslateMessage(c, apiErr.MessageID, data); msg != apiErr.MessageID {
		apiErr.Message = msg
	}
}
