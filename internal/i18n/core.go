package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var embedded embed.FS

var (
	mu          sync.RWMutex
	translator  *I18n
	defaultLang = cnst.LangDefault
)

// SetDefaultLanguage sets the language used when a request does not ask for one
func SetDefaultLanguage(lang string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLang = normalize(lang, cnst.LangDefault)
}

// DefaultLanguage returns the configured fallback language
func DefaultLanguage() string {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLang
}

// InitTranslator builds the global translator from the embedded messages,
// then applies any TOML files found in overrideDir.
func InitTranslator(overrideDir string) error {
	t := NewI18n(language.Make(DefaultLanguage()))
	if err := t.LoadEmbedded(); err != nil {
		return err
	}
	if overrideDir != "" {
		if err := t.LoadTranslations(overrideDir); err != nil {
			return err
		}
	}
	mu.Lock()
	translator = t
	mu.Unlock()
	return nil
}

// GetTranslator returns the global translator, building it from the embedded messages on first use
func GetTranslator() *I18n {
	mu.RLock()
	t := translator
	mu.RUnlock()
	if t != nil {
		return t
	}
	_ = InitTranslator("")
	mu.RLock()
	defer mu.RUnlock()
	return translator
}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// LoadEmbedded loads the translations compiled into the binary
func (i *I18n) LoadEmbedded() error {
	entries, err := fs.ReadDir(embedded, "translations")
	if err != nil {
		return fmt.Errorf("failed to read embedded translations: %w", err)
	}
	for _, e := range entries {
		if _, err := i.bundle.LoadMessageFileFS(embedded, path.Join("translations", e.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", e.Name(), err)
		}
	}
	return nil
}

// LoadTranslations loads translation files from the specified directory.
// Messages loaded later replace earlier ones with the same id.
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(translationsDir, file.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", file.Name(), err)
		}
	}

	return nil
}

// Translate returns a localized string for the given message ID and language.
// The message ID itself is returned when no translation exists.
func (i *I18n) Translate(msgID string, lang string, templateData map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, lang, i.defaultLang.String())

	lc := &i18n.LocalizeConfig{
		MessageID: msgID,
	}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		return msgID
	}
	return msg
}

// LanguageFromRequest extracts the language preference from X-Lang, then Accept-Language
func LanguageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalize(lang, DefaultLanguage())
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			base, _ := tags[0].Base()
			return normalize(base.String(), DefaultLanguage())
		}
	}

	return DefaultLanguage()
}

// normalize maps a language code onto a supported language or fallback
func normalize(lang, fallback string) string {
	code := strings.ToLower(strings.TrimSpace(strings.Split(lang, "-")[0]))
	switch code {
	case cnst.LangEN, cnst.LangZH:
		return code
	default:
		return fallback
	}
}

// LangFromContext returns the language chosen for the request
func LangFromContext(c *gin.Context) string {
	if lang := c.GetString(cnst.XLang); lang != "" {
		return lang
	}
	return DefaultLanguage()
}

// TranslateMessage translates a message ID using the context's language preference
func TranslateMessage(c *gin.Context, msgID string, data map[string]any) string {
	return GetTranslator().Translate(msgID, LangFromContext(c), data)
}
