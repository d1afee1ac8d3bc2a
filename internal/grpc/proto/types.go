// Package proto содержит сообщения и описание gRPC сервиса ссылок.
// Сообщения передаются в JSON, см. codec.go.
package proto

// ShortenRequest запрос на сокращение URL
type ShortenRequest struct {
	OriginalURL string `json:"original_url"`
	CreatorID   string `json:"creator_id,omitempty"`
}

// ShortenResponse короткая ссылка; Created равен false, если URL уже был сокращён
type ShortenResponse struct {
	ShortID  string `json:"short_id"`
	ShortURL string `json:"short_url"`
	Created  bool   `json:"created"`
}

// ResolveRequest запрос перехода по короткому ID
type ResolveRequest struct {
	ShortID string `json:"short_id"`
}

// ResolveResponse исходный URL для перехода
type ResolveResponse struct {
	OriginalURL string `json:"original_url"`
}

// GetStatsRequest запрос статистики ссылки
type GetStatsRequest struct {
	ShortID string `json:"short_id"`
}

// GetStatsResponse статистика переходов по ссылке
type GetStatsResponse struct {
	ShortID          string   `json:"short_id"`
	ClickCount       int64    `json:"click_count"`
	VisitorAddresses []string `json:"visitor_addresses"`
}

// PingRequest запрос проверки состояния
type PingRequest struct{}

// PingResponse состояние хранилища
type PingResponse struct {
	DatabaseAvailable bool `json:"database_available"`
}
