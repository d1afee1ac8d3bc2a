// Package i18n переводит пользовательские сообщения об ошибках.
// Язык по умолчанию русский, по Accept-Language доступен английский.
package i18n

import (
	"strconv"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Ключи сообщений
const (
	MsgEnterURL      = "enter_url"
	MsgURLTooLong    = "url_too_long"
	MsgInvalidURL    = "invalid_url"
	MsgLinkNotFound  = "link_not_found"
	MsgShortenLimit  = "shorten_limit"
	MsgRedirectLimit = "redirect_limit"
	MsgInternal      = "internal_error"
)

var supported = []language.Tag{language.Russian, language.English}

// Localizer подбирает язык клиента и форматирует сообщения
type Localizer struct {
	matcher language.Matcher
	catalog catalog.Catalog
}

// NewLocalizer создаёт Localizer со встроенным каталогом сообщений
func NewLocalizer() (*Localizer, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.Russian))

	entries := []struct {
		tag language.Tag
		key string
		msg catalog.Message
	}{
		{language.Russian, MsgEnterURL, catalog.String("Введите ссылку")},
		{language.Russian, MsgURLTooLong, catalog.String("Ссылка длиннее %[2]s символов")},
		{language.Russian, MsgInvalidURL, catalog.String("Ссылка должна начинаться с http:// или https://")},
		{language.Russian, MsgLinkNotFound, catalog.String("Такой короткой ссылки не существует")},
		{language.Russian, MsgShortenLimit, plural.Selectf(1, "%d",
			"one", "В день доступен только %[2]s запрос. Попробуйте завтра.",
			"few", "В день доступно только %[2]s запроса. Попробуйте завтра.",
			"other", "В день доступно только %[2]s запросов. Попробуйте завтра.",
		)},
		{language.Russian, MsgRedirectLimit, plural.Selectf(1, "%d",
			"one", "В день доступен только %[2]s клик по ссылке. Попробуйте завтра.",
			"few", "В день доступно только %[2]s клика по ссылке. Попробуйте завтра.",
			"other", "В день доступно только %[2]s кликов по ссылке. Попробуйте завтра.",
		)},
		{language.Russian, MsgInternal, catalog.String("Внутренняя ошибка сервера")},

		{language.English, MsgEnterURL, catalog.String("Enter a link")},
		{language.English, MsgURLTooLong, catalog.String("The link is longer than %[2]s characters")},
		{language.English, MsgInvalidURL, catalog.String("The link must start with http:// or https://")},
		{language.English, MsgLinkNotFound, catalog.String("This short link does not exist")},
		{language.English, MsgShortenLimit, plural.Selectf(1, "%d",
			"one", "Only %[2]s request per day is available. Try again tomorrow.",
			"other", "Only %[2]s requests per day are available. Try again tomorrow.",
		)},
		{language.English, MsgRedirectLimit, plural.Selectf(1, "%d",
			"one", "Only %[2]s link click per day is available. Try again tomorrow.",
			"other", "Only %[2]s link clicks per day are available. Try again tomorrow.",
		)},
		{language.English, MsgInternal, catalog.String("Internal server error")},
	}
	for _, e := range entries {
		if err := b.Set(e.tag, e.key, e.msg); err != nil {
			return nil, err
		}
	}

	return &Localizer{
		matcher: language.NewMatcher(supported),
		catalog: b,
	}, nil
}

// Match выбирает поддерживаемый язык по заголовку Accept-Language
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// Printer возвращает принтер сообщений для заголовка Accept-Language
func (l *Localizer) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(l.Match(acceptLanguage), message.Catalog(l.catalog))
}

// Sprintf форматирует сообщение key на языке клиента
func (l *Localizer) Sprintf(acceptLanguage, key string, args ...interface{}) string {
	return l.Printer(acceptLanguage).Sprintf(key, args...)
}

// Count форматирует сообщение key с числом n. Форма слова выбирается по n,
// а само число выводится без разделителей разрядов ("2048", а не "2 048").
func (l *Localizer) Count(acceptLanguage, key string, n int) string {
	return l.Printer(acceptLanguage).Sprintf(key, n, strconv.Itoa(n))
}
