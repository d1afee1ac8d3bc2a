// Package idgen генерирует короткие идентификаторы ссылок.
package idgen

import (
	"github.com/lithammer/shortuuid/v4"
)

// DefaultLength длина короткого идентификатора по умолчанию
const DefaultLength = 6

// Generator определяет интерфейс генератора коротких идентификаторов
type Generator interface {
	// Generate возвращает новый идентификатор; уникальность не гарантируется
	Generate() string
}

// GeneratorFunc позволяет использовать функцию как Generator
type GeneratorFunc func() string

// Generate вызывает f()
func (f GeneratorFunc) Generate() string {
	return f()
}

// ShortUUIDGenerator берёт префикс shortuuid (base57 от UUIDv4)
type ShortUUIDGenerator struct {
	length int
}

// NewShortUUIDGenerator создаёт генератор идентификаторов заданной длины
func NewShortUUIDGenerator(length int) *ShortUUIDGenerator {
	// shortuuid кодирует 128 бит в 22 символа
	if length <= 0 || length > 22 {
		length = DefaultLength
	}
	return &ShortUUIDGenerator{length: length}
}

// Generate возвращает идентификатор из URL-безопасного алфавита base57
func (g *ShortUUIDGenerator) Generate() string {
	return shortuuid.New()[:g.length]
}

// Length возвращает длину генерируемых идентификаторов
func (g *ShortUUIDGenerator) Length() int {
	return g.length
}
