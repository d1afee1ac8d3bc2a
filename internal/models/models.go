// Package models содержит доменные типы сервиса и структуры запросов/ответов API.
package models

// Link сохранённая ссылка вместе с аналитикой переходов
type Link struct {
	ID               int64    `json:"id"`
	OriginalURL      string   `json:"original_url"`
	ShortID          string   `json:"short_id"`
	CreatorID        string   `json:"creator_id"`
	ClickCount       int64    `json:"click_count"`
	VisitorAddresses []string `json:"visitor_addresses"`
}

// Stats статистика переходов по короткой ссылке
type Stats struct {
	ShortID          string   `json:"shortId"`
	ClickCount       int64    `json:"clickCount"`
	VisitorAddresses []string `json:"visitorAddresses"`
}

// Stats возвращает статистику ссылки
func (l Link) Stats() Stats {
	addrs := l.VisitorAddresses
	if addrs == nil {
		addrs = []string{}
	}
	return Stats{
		ShortID:          l.ShortID,
		ClickCount:       l.ClickCount,
		VisitorAddresses: addrs,
	}
}

// ShortenResult результат сокращения URL
type ShortenResult struct {
	ShortID  string
	ShortURL string
	// Created равен false, если ссылка для этого URL уже существовала
	Created bool
}

// ShortenRequest тело запроса POST /api/shorten
type ShortenRequest struct {
	URL       string `json:"url"`
	CreatorID string `json:"creator_id,omitempty"`
}

// ShortenResponse ответ POST /api/shorten
type ShortenResponse struct {
	Result  string `json:"result"`
	ShortID string `json:"short_id"`
}

// ErrorResponse тело JSON-ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
