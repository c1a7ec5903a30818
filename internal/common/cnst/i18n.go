package cnst

const (
	LangEN      = "en"
	LangZH      = "zh"
	LangDefault = LangEN
)

const (
	// XLang is the request header (and gin context key) carrying the preferred language
	XLang = "X-Lang"
	// CtxKeyTranslator is the gin context key of the request translator
	CtxKeyTranslator = "translator"
)
